package reset

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/internal/resume"
	"github.com/botdash/botdash-cli/internal/runtime"
	"github.com/botdash/botdash-cli/internal/settings"
	"github.com/botdash/botdash-cli/internal/ui"
)

var errConfirmationRequired = errors.New("reset needs confirmation, pass --yes when running non-interactively")

type integrationStore interface {
	IntegrationID() (string, error)
	ClearIntegrationID() error
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forgets the Bitrix24 integration in progress",
		Long:  "Removes the stored integration id so the next connect starts from the first step. The integration on the backend is not deleted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := runtimeContext.ClientFactory.OpenResumeStore()
			if err != nil {
				return err
			}
			defer store.Close()

			h := &handler{
				log:            runtimeContext.Logger,
				skipConfirm:    runtimeContext.ClientFactory.GetSkipConfirmation(),
				nonInteractive: runtimeContext.Settings.NonInteractive,
				confirm: func(id string) (bool, error) {
					return ui.Confirm(fmt.Sprintf("Forget integration %s?", id),
						ui.WithDescription("You will have to generate a new handler URL in the next connect"))
				},
			}
			return h.Execute(store)
		},
	}
	settings.AddSkipConfirmation(cmd)
	return cmd
}

type handler struct {
	log            *zerolog.Logger
	skipConfirm    bool
	nonInteractive bool
	confirm        func(id string) (bool, error)
}

func (h *handler) Execute(store integrationStore) error {
	id, err := store.IntegrationID()
	if errors.Is(err, resume.ErrNotFound) {
		ui.Dim("No integration in progress, nothing to reset")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read wizard state: %w", err)
	}

	if !h.skipConfirm {
		if h.nonInteractive {
			return errConfirmationRequired
		}
		ok, err := h.confirm(id)
		if err != nil {
			return err
		}
		if !ok {
			h.log.Debug().Msg("Reset declined")
			return nil
		}
	}

	if err := store.ClearIntegrationID(); err != nil {
		return fmt.Errorf("failed to clear wizard state: %w", err)
	}
	ui.Success("Integration " + id + " forgotten")
	return nil
}
