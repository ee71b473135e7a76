package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"

	"github.com/botdash/botdash-cli/internal/constants"
)

// Stored is the on-disk credentials document.
type Stored struct {
	AuthType    string `yaml:"auth_type"`
	APIKey      string `yaml:"api_key,omitempty"`
	AccessToken string `yaml:"access_token,omitempty"`
	Email       string `yaml:"email,omitempty"`
	Workspace   string `yaml:"workspace,omitempty"`
}

type Credentials struct {
	APIKey      string
	AccessToken string
	AuthType    string
	IsValidated bool
	log         *zerolog.Logger
}

const (
	ApiKeyVar      = "BOTDASH_API_KEY"
	AuthTypeApiKey = "api-key"
	AuthTypeBearer = "bearer"
	ConfigFile     = "credentials.yaml"
)

var ErrNotLoggedIn = errors.New("you are not logged in, try running botdash login")

func New(logger *zerolog.Logger) (*Credentials, error) {
	cfg := &Credentials{
		AuthType: AuthTypeBearer,
		log:      logger,
	}
	if key := os.Getenv(ApiKeyVar); key != "" {
		cfg.APIKey = key
		cfg.AuthType = AuthTypeApiKey
		return cfg, nil
	}

	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("no stored credentials")
		return nil, ErrNotLoggedIn
	}

	var stored Stored
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	switch {
	case stored.APIKey != "":
		cfg.APIKey = stored.APIKey
		cfg.AuthType = AuthTypeApiKey
	case stored.AccessToken != "":
		cfg.AccessToken = stored.AccessToken
	default:
		return nil, ErrNotLoggedIn
	}
	return cfg, nil
}

// Path returns the location of the credentials file under the user's home.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, constants.ConfigDir, ConfigFile), nil
}

func SaveCredentials(stored *Stored) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file %s to %s: %w", tmp, path, err)
	}
	return nil
}

func RemoveCredentials() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials file: %w", err)
	}
	return nil
}
