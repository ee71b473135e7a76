package ui

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table renders rows with a header using go-pretty. Colors are only used on a TTY.
type Table struct {
	w      io.Writer
	writer table.Writer
}

func NewTable(w io.Writer, header ...string) *Table {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatUpper

	if isTerminal(w) {
		tw.Style().Color.Header = text.Colors{text.FgHiMagenta, text.Bold}
	}

	row := make(table.Row, len(header))
	for i, h := range header {
		row[i] = h
	}
	tw.AppendHeader(row)
	return &Table{w: w, writer: tw}
}

func (t *Table) Append(cells ...any) {
	t.writer.AppendRow(table.Row(cells))
}

// Render writes the table to the underlying writer.
func (t *Table) Render() {
	t.writer.Render()
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return t.writer.Length()
}
