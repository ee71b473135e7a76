package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/botdash/botdash-cli/internal/constants"
)

var errNoEnvFile = errors.New("no .env file found")

var boundEnvVars = []string{
	APIKeyEnvVar,
	WizardVariantEnvVar,
	ProvisioningTimeoutEnvVar,
}

// LoadEnv exports the variables of a .env file into the process
// environment without overriding ones already set. An explicit path wins;
// otherwise the nearest .env from the working directory upwards is used.
// It returns the path that was loaded.
func LoadEnv(explicit string) (string, error) {
	path := explicit
	if path == "" || !isFile(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		if path = nearestFile(cwd, constants.DefaultEnvFileName); path == "" {
			return "", errNoEnvFile
		}
	}

	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	return path, nil
}

func bindEnv(v *viper.Viper) error {
	for _, name := range boundEnvVars {
		if err := v.BindEnv(name); err != nil {
			return fmt.Errorf("binding %s: %w", name, err)
		}
	}
	v.AutomaticEnv()
	return nil
}

func nearestFile(dir, name string) string {
	for {
		if candidate := filepath.Join(dir, name); isFile(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
