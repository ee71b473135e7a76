package environments

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/botdash/botdash-cli/internal/validation"
)

const (
	EnvVarEnv = "BOTDASH_ENV"

	EnvVarUIURL      = "BOTDASH_UI_URL"
	EnvVarAPIURL     = "BOTDASH_API_URL"
	EnvVarGraphQLURL = "BOTDASH_GRAPHQL_URL"

	DefaultEnv = "PRODUCTION"
)

//go:embed environments.yaml
var builtin []byte

// EnvironmentSet holds the service endpoints of one deployment.
type EnvironmentSet struct {
	UIURL      string `yaml:"BOTDASH_UI_URL"      validate:"omitempty,http_url" cli:"BOTDASH_UI_URL"`
	APIURL     string `yaml:"BOTDASH_API_URL"     validate:"required,http_url"  cli:"BOTDASH_API_URL"`
	GraphQLURL string `yaml:"BOTDASH_GRAPHQL_URL" validate:"required,http_url"  cli:"BOTDASH_GRAPHQL_URL"`
}

type fileFormat struct {
	Envs map[string]EnvironmentSet `yaml:"ENVIRONMENTS"`
}

func parseEnvironmentFile(data []byte) (*fileFormat, error) {
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing environments: %w", err)
	}
	return &ff, nil
}

// NewEnvironmentSet picks envName (case-insensitive, production when
// unknown) and applies the per-URL environment variable overrides.
func NewEnvironmentSet(ff *fileFormat, envName string) *EnvironmentSet {
	set, ok := ff.Envs[strings.ToUpper(envName)]
	if !ok {
		set = ff.Envs[DefaultEnv]
	}

	for name, field := range map[string]*string{
		EnvVarUIURL:      &set.UIURL,
		EnvVarAPIURL:     &set.APIURL,
		EnvVarGraphQLURL: &set.GraphQLURL,
	} {
		if override := os.Getenv(name); override != "" {
			*field = override
		}
	}

	set.APIURL = strings.TrimRight(set.APIURL, "/")
	return &set
}

// New resolves the environment named by BOTDASH_ENV from the built-in table.
func New() (*EnvironmentSet, error) {
	ff, err := parseEnvironmentFile(builtin)
	if err != nil {
		return nil, err
	}

	set := NewEnvironmentSet(ff, os.Getenv(EnvVarEnv))

	v, err := validation.NewValidator()
	if err != nil {
		return nil, err
	}
	if err := v.Struct(set); err != nil {
		return nil, fmt.Errorf("environment endpoints: %w", err)
	}
	return set, nil
}
