package whoami

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/internal/authvalidation"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
	"github.com/botdash/botdash-cli/internal/runtime"
	"github.com/botdash/botdash-cli/internal/ui"
)

func New(runtimeCtx *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show your current account details",
		Long:  "Fetches the account behind the stored credentials (email and workspace).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := NewHandler(runtimeCtx)
			return h.Execute(cmd.Context())
		},
	}
	return cmd
}

type Handler struct {
	log            *zerolog.Logger
	credentials    *credentials.Credentials
	environmentSet *environments.EnvironmentSet
	account        *authvalidation.Account
}

func NewHandler(ctx *runtime.Context) *Handler {
	return &Handler{
		log:            ctx.Logger,
		credentials:    ctx.Credentials,
		environmentSet: ctx.EnvironmentSet,
		account:        ctx.Account,
	}
}

// Execute prints the account. The lookup done while loading credentials is
// reused when present.
func (h *Handler) Execute(ctx context.Context) error {
	account := h.account
	if account == nil {
		validator := authvalidation.NewValidator(h.credentials, h.environmentSet, h.log)
		fetched, err := ui.WithSpinnerResult("Fetching account details...", func() (authvalidation.Account, error) {
			return validator.ValidateCredentials(ctx, h.credentials)
		})
		if err != nil {
			return fmt.Errorf("graphql request failed: %w", err)
		}
		account = &fetched
	}

	ui.Line()
	ui.Title("Account Details")

	details := fmt.Sprintf("Email:     %s\nWorkspace: %s\nUser ID:   %s",
		account.Email,
		account.Workspace,
		account.UserID)
	if h.credentials != nil && h.credentials.AuthType == credentials.AuthTypeApiKey {
		details += "\nAuth:      API key"
	}

	ui.Box(details)
	ui.Line()

	h.log.Debug().Str("userId", account.UserID).Msg("Account details retrieved")
	return nil
}
