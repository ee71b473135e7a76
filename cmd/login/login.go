package login

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/botdash/botdash-cli/internal/authvalidation"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
	"github.com/botdash/botdash-cli/internal/runtime"
	"github.com/botdash/botdash-cli/internal/settings"
	"github.com/botdash/botdash-cli/internal/ui"
	"github.com/botdash/botdash-cli/internal/validation"
)

const apiKeyFlag = "api-key"

var errAPIKeyRequired = errors.New("an API key is required: pass --api-key or set " + credentials.ApiKeyVar)

type Inputs struct {
	APIKey string `validate:"api_key" cli:"--api-key"`
}

func New(runtimeCtx *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for the botdash backend",
		Long:  "Validates an API key against your account and saves it to ~/.botdash/credentials.yaml.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeCtx)
			inputs, err := h.ResolveInputs(cmd.Flags().Changed(apiKeyFlag), runtimeCtx.Viper.GetString(apiKeyFlag))
			if err != nil {
				return err
			}
			if err := h.ValidateInputs(inputs); err != nil {
				return err
			}
			return h.Execute(cmd.Context(), inputs)
		},
	}

	cmd.Flags().String(apiKeyFlag, "", "API key to store (prompted for when omitted)")

	return cmd
}

type handler struct {
	log            *zerolog.Logger
	environmentSet *environments.EnvironmentSet
	nonInteractive bool
	// prompt asks for the key; swapped in tests
	prompt func() (string, error)
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:            ctx.Logger,
		environmentSet: ctx.EnvironmentSet,
		nonInteractive: ctx.Viper.GetBool(settings.Flags.NonInteractive.Name),
		prompt:         promptForAPIKey,
	}
}

func (h *handler) ResolveInputs(flagSet bool, flagValue string) (Inputs, error) {
	if flagSet {
		return Inputs{APIKey: strings.TrimSpace(flagValue)}, nil
	}
	if h.nonInteractive {
		return Inputs{}, errAPIKeyRequired
	}
	key, err := h.prompt()
	if err != nil {
		return Inputs{}, fmt.Errorf("failed to read API key: %w", err)
	}
	return Inputs{APIKey: strings.TrimSpace(key)}, nil
}

func (h *handler) ValidateInputs(inputs Inputs) error {
	v, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to initialize validator: %w", err)
	}
	return v.Struct(inputs)
}

func (h *handler) Execute(ctx context.Context, inputs Inputs) error {
	creds := &credentials.Credentials{
		APIKey:   inputs.APIKey,
		AuthType: credentials.AuthTypeApiKey,
	}

	validator := authvalidation.NewValidator(creds, h.environmentSet, h.log)
	account, err := ui.WithSpinnerResult("Checking API key...", func() (authvalidation.Account, error) {
		return validator.ValidateCredentials(ctx, creds)
	})
	if err != nil {
		return fmt.Errorf("the API key was not accepted: %w", err)
	}

	stored := &credentials.Stored{
		AuthType:  credentials.AuthTypeApiKey,
		APIKey:    inputs.APIKey,
		Email:     account.Email,
		Workspace: account.Workspace,
	}
	if err := credentials.SaveCredentials(stored); err != nil {
		h.log.Error().Err(err).Msg("failed to save credentials")
		return err
	}

	ui.Line()
	ui.Success("Login completed successfully")
	if account.Email != "" {
		ui.Dim(fmt.Sprintf("Signed in as %s (%s)", account.Email, account.Workspace))
	}
	ui.Line()
	ui.Print("To connect a bot to Bitrix24, run:")
	ui.Command("  botdash integration bitrix connect")
	return nil
}

func promptForAPIKey() (string, error) {
	v, err := validation.NewValidator()
	if err != nil {
		return "", err
	}
	return ui.Input("API key",
		ui.WithInputDescription("Create one in the dashboard under Settings > API keys"),
		ui.WithSecret(),
		ui.WithValidation(func(s string) error {
			return v.Var("API key", strings.TrimSpace(s), "api_key")
		}),
	)
}
