package client

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/botdash/botdash-cli/internal/client/botclient"
	"github.com/botdash/botdash-cli/internal/client/graphqlclient"
	"github.com/botdash/botdash-cli/internal/client/provisioning"
	"github.com/botdash/botdash-cli/internal/client/restclient"
	"github.com/botdash/botdash-cli/internal/credentials"
	"github.com/botdash/botdash-cli/internal/environments"
	"github.com/botdash/botdash-cli/internal/resume"
	"github.com/botdash/botdash-cli/internal/settings"
)

type Factory interface {
	NewBotClient(creds *credentials.Credentials, env *environments.EnvironmentSet) *botclient.Client
	NewProvisioningClient(creds *credentials.Credentials, env *environments.EnvironmentSet, s *settings.Settings) *provisioning.Client
	OpenResumeStore() (*resume.Store, error)
	GetSkipConfirmation() bool
}

type factoryImpl struct {
	logger *zerolog.Logger
	viper  *viper.Viper
}

func NewFactory(logger *zerolog.Logger, viper *viper.Viper) Factory {
	return &factoryImpl{
		logger: logger,
		viper:  viper,
	}
}

func (f *factoryImpl) NewBotClient(creds *credentials.Credentials, env *environments.EnvironmentSet) *botclient.Client {
	f.logger.Debug().Str("url", env.GraphQLURL).Msg("Using bot identity service")
	return botclient.New(graphqlclient.New(creds, env, f.logger), f.logger)
}

func (f *factoryImpl) NewProvisioningClient(creds *credentials.Credentials, env *environments.EnvironmentSet, s *settings.Settings) *provisioning.Client {
	rest := restclient.New(creds, env, f.logger)
	f.logger.Debug().
		Str("url", rest.BaseURL()).
		Dur("timeout", s.Wizard.ProvisioningTimeout).
		Msg("Using provisioning service")
	return provisioning.New(rest, f.logger, s.Wizard.ProvisioningTimeout)
}

func (f *factoryImpl) OpenResumeStore() (*resume.Store, error) {
	dir, err := resume.DefaultDir()
	if err != nil {
		return nil, err
	}
	store, err := resume.Open(resume.Options{Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("failed to open wizard state in %s: %w", dir, err)
	}
	return store, nil
}

func (f *factoryImpl) GetSkipConfirmation() bool {
	return f.viper.GetBool(settings.Flags.SkipConfirm.Name)
}
