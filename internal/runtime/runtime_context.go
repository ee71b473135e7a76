package runtime

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/botdash/botdash-cli/cmd/client"
	"github.com/botdash/botdash-cli/internal/authvalidation"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
	"github.com/botdash/botdash-cli/internal/settings"
)

type Context struct {
	Logger         *zerolog.Logger
	Viper          *viper.Viper
	ClientFactory  client.Factory
	Settings       *settings.Settings
	Credentials    *credentials.Credentials
	EnvironmentSet *environments.EnvironmentSet
	Account        *authvalidation.Account
}

func NewContext(logger *zerolog.Logger, viper *viper.Viper) *Context {
	return &Context{
		Logger:        logger,
		Viper:         viper,
		ClientFactory: client.NewFactory(logger, viper),
	}
}

func (ctx *Context) AttachSettings() error {
	var err error

	ctx.Settings, err = settings.New(ctx.Logger, ctx.Viper)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	return nil
}

// AttachCredentials loads stored credentials and, unless skipValidation is
// set, confirms them against the account endpoint.
func (ctx *Context) AttachCredentials(validationCtx context.Context, skipValidation bool) error {
	var err error

	ctx.Credentials, err = credentials.New(ctx.Logger)
	if err != nil {
		return err
	}

	if !skipValidation {
		if ctx.EnvironmentSet == nil {
			return fmt.Errorf("failed to load environment")
		}

		validator := authvalidation.NewValidator(ctx.Credentials, ctx.EnvironmentSet, ctx.Logger)
		account, err := validator.ValidateCredentials(validationCtx, ctx.Credentials)
		if err != nil {
			return err
		}
		ctx.Account = &account
	}

	return nil
}

func (ctx *Context) AttachEnvironmentSet() error {
	var err error

	ctx.EnvironmentSet, err = environments.New()
	if err != nil {
		return fmt.Errorf("failed to load environment details: %w", err)
	}

	return nil
}
