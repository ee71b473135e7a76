package status

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/internal/resume"
	"github.com/botdash/botdash-cli/internal/runtime"
	"github.com/botdash/botdash-cli/internal/settings"
	"github.com/botdash/botdash-cli/internal/ui"
	"github.com/botdash/botdash-cli/internal/wizard"
)

type integrationReader interface {
	IntegrationID() (string, error)
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Shows the Bitrix24 wizard steps and the integration in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := runtimeContext.ClientFactory.OpenResumeStore()
			if err != nil {
				return err
			}
			defer store.Close()

			h := newHandler(runtimeContext.Logger, runtimeContext.Settings.Wizard.Variant, cmd.OutOrStdout())
			return h.Execute(store)
		},
	}
	settings.AddWizardFlags(cmd)
	return cmd
}

type handler struct {
	log     *zerolog.Logger
	variant string
	out     io.Writer
}

func newHandler(log *zerolog.Logger, variant string, out io.Writer) *handler {
	return &handler{log: log, variant: variant, out: out}
}

func (h *handler) Execute(store integrationReader) error {
	reg, err := wizard.NewRegistry(h.variant)
	if err != nil {
		return err
	}

	fmt.Fprintf(h.out, "Wizard layout: %s (%d steps)\n", reg.Variant(), reg.Total())

	t := ui.NewTable(h.out, "Step", "Title", "Collects", "Action")
	for _, step := range reg.Steps() {
		action := ""
		if step.Action != wizard.ActionNone {
			action = step.Action.String()
		}
		t.Append(step.Index, step.Title, fieldNames(step.Inputs), action)
	}
	t.Render()

	id, err := store.IntegrationID()
	switch {
	case errors.Is(err, resume.ErrNotFound):
		fmt.Fprintln(h.out, "No integration in progress.")
	case err != nil:
		return fmt.Errorf("failed to read wizard state: %w", err)
	default:
		fmt.Fprintf(h.out, "Integration in progress: %s\n", id)
		fmt.Fprintf(h.out, "Resume with `botdash integration bitrix connect --resume` (starts at step %d)\n", reg.ResumeStep())
	}
	return nil
}

func fieldNames(names []wizard.FieldName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
