package logger

import (
	"sort"

	"github.com/rs/zerolog"
)

const redacted = "[REDACTED]"

// FieldsWrapper logs a string map, masking the values of sensitive keys.
// Keys are emitted in sorted order so log lines stay stable.
type FieldsWrapper struct {
	Fields    map[string]string
	Sensitive map[string]bool
}

func (w FieldsWrapper) MarshalZerologObject(e *zerolog.Event) {
	keys := make([]string, 0, len(w.Fields))
	for k := range w.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := w.Fields[k]
		if w.Sensitive[k] && v != "" {
			e.Str(k, redacted)
			continue
		}
		e.Str(k, v)
	}
}
