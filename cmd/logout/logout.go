package logout

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/runtime"
)

func New(runtimeCtx *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove local credentials",
		Long:  "Deletes the API key stored by botdash login. Keys supplied through BOTDASH_API_KEY are not affected.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeCtx)
			return h.execute()
		},
	}
	return cmd
}

type handler struct {
	log         *zerolog.Logger
	credentials *credentials.Credentials
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:         ctx.Logger,
		credentials: ctx.Credentials,
	}
}

func (h *handler) execute() error {
	if h.credentials == nil {
		h.log.Info().Msg("user not logged in")
		return nil
	}

	if err := credentials.RemoveCredentials(); err != nil {
		return err
	}

	h.log.Info().Msg("Logged out successfully")
	return nil
}
