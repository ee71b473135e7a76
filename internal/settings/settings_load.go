package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/botdash/botdash-cli/internal/constants"
)

// Config names (YAML field paths in ~/.botdash/config.yaml)
const (
	WizardVariantSettingName       = "wizard.variant"
	ProvisioningTimeoutSettingName = "provisioning.timeout"
)

type Flag struct {
	Name  string
	Short string
}

type flagNames struct {
	CliEnvFile     Flag
	Verbose        Flag
	Timeout        Flag
	WizardVariant  Flag
	NonInteractive Flag
	BotID          Flag
	Resume         Flag
	SkipConfirm    Flag
}

var Flags = flagNames{
	CliEnvFile:     Flag{"env", "e"},
	Verbose:        Flag{"verbose", "v"},
	Timeout:        Flag{"timeout", ""},
	WizardVariant:  Flag{"wizard-variant", ""},
	NonInteractive: Flag{"non-interactive", ""},
	BotID:          Flag{"bot-id", "b"},
	Resume:         Flag{"resume", ""},
	SkipConfirm:    Flag{"yes", "y"},
}

// AddWizardFlags registers the flags shared by commands that open the integration wizard.
func AddWizardFlags(cmd *cobra.Command) {
	cmd.Flags().Duration(Flags.Timeout.Name, constants.DefaultProvisioningTimeout, "Time allowed for each provisioning call before it is reported as timed out")
	cmd.Flags().String(Flags.WizardVariant.Name, "", "Wizard layout to use: guided (11 steps) or compact (12 steps)")
}

func AddSkipConfirmation(cmd *cobra.Command) {
	cmd.Flags().BoolP(Flags.SkipConfirm.Name, Flags.SkipConfirm.Short, false, "If set, the command will skip the confirmation prompt")
}

func mergeConfigToViper(v *viper.Viper, filePath string) error {
	v.SetConfigFile(filePath)
	err := v.MergeInConfig()
	if err != nil {
		return fmt.Errorf("error loading config file %s: %w", filePath, err)
	}
	return nil
}

// LoadSettingsIntoViper merges the user config file (if present) into Viper.
// Flags and environment variables keep precedence over file values.
func LoadSettingsIntoViper(v *viper.Viper) error {
	path, err := ConfigFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	v.SetConfigType("yaml")
	return mergeConfigToViper(v, path)
}

// ConfigFilePath returns the location of the optional user config file.
func ConfigFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, constants.ConfigDir, constants.ConfigFileName), nil
}

func resolveVariant(v *viper.Viper) string {
	if v.IsSet(Flags.WizardVariant.Name) && v.GetString(Flags.WizardVariant.Name) != "" {
		return v.GetString(Flags.WizardVariant.Name)
	}
	if s := v.GetString(WizardVariantEnvVar); s != "" {
		return s
	}
	if s := v.GetString(WizardVariantSettingName); s != "" {
		return s
	}
	return constants.DefaultWizardVariant
}

func resolveTimeout(v *viper.Viper) (time.Duration, error) {
	// IsSet only reports bound flags the user actually passed.
	if v.IsSet(Flags.Timeout.Name) {
		return v.GetDuration(Flags.Timeout.Name), nil
	}
	for _, key := range []string{ProvisioningTimeoutEnvVar, ProvisioningTimeoutSettingName} {
		raw := v.GetString(key)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid provisioning timeout %q: %w", raw, err)
		}
		return d, nil
	}
	return constants.DefaultProvisioningTimeout, nil
}
