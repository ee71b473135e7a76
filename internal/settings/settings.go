package settings

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/botdash/botdash-cli/internal/validation"
)

const (
	WizardVariantEnvVar       = "BOTDASH_WIZARD_VARIANT"
	ProvisioningTimeoutEnvVar = "BOTDASH_PROVISIONING_TIMEOUT"
	// kept out of the config file
	APIKeyEnvVar = "BOTDASH_API_KEY"
)

// Settings holds the resolved configuration of a single CLI invocation.
type Settings struct {
	Wizard         WizardSettings
	NonInteractive bool
}

type WizardSettings struct {
	Variant             string        `validate:"oneof=guided compact" cli:"--wizard-variant"`
	ProvisioningTimeout time.Duration `validate:"duration" cli:"--timeout"`
}

// New initializes and loads settings from flags, the `.env` file, the
// system environment and the optional user config file, in that order of precedence.
func New(logger *zerolog.Logger, v *viper.Viper) (*Settings, error) {
	envPath := v.GetString(Flags.CliEnvFile.Name)

	if loaded, err := LoadEnv(envPath); err != nil {
		logger.Debug().Err(err).Msg("Skipping .env file; only exported variables are used")
	} else {
		logger.Debug().Str("path", loaded).Msg("Loaded .env file")
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := LoadSettingsIntoViper(v); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	timeout, err := resolveTimeout(v)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Wizard: WizardSettings{
			Variant:             resolveVariant(v),
			ProvisioningTimeout: timeout,
		},
		NonInteractive: v.GetBool(Flags.NonInteractive.Name),
	}

	validator, err := validation.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize validator: %w", err)
	}
	if err := validator.Struct(s.Wizard); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("variant", s.Wizard.Variant).
		Dur("timeout", s.Wizard.ProvisioningTimeout).
		Msg("Settings loaded")

	return s, nil
}
