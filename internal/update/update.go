package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/botdash/botdash-cli/internal/constants"
)

const (
	releasesAPIURL = "https://api.github.com/repos/botdash/botdash-cli/releases/latest"
	releasesURL    = "https://github.com/botdash/botdash-cli/releases"
	fetchTimeout   = 2 * time.Second
	cacheDuration  = 24 * time.Hour
	cacheFileName  = "update.json"

	ForceCheckEnvVar = "BOTDASH_FORCE_UPDATE_CHECK"
)

type githubRelease struct {
	TagName string `json:"tag_name"`
}

type cacheState struct {
	LatestVersion string    `json:"latest_version"`
	LastCheck     time.Time `json:"last_check"`
}

// Checker compares the running version with the latest published release
// and prints a notice when an upgrade exists. Lookups are cached for a day.
type Checker struct {
	apiURL    string
	cachePath string
	out       io.Writer
	client    *http.Client
	now       func() time.Time
	log       *zerolog.Logger
}

// NewChecker returns a Checker using ~/.botdash/update.json as its cache.
func NewChecker(log *zerolog.Logger) *Checker {
	cachePath := ""
	if home, err := os.UserHomeDir(); err == nil {
		cachePath = filepath.Join(home, constants.ConfigDir, cacheFileName)
	} else {
		log.Debug().Err(err).Msg("Failed to get user home directory")
	}
	return &Checker{
		apiURL:    releasesAPIURL,
		cachePath: cachePath,
		out:       os.Stderr,
		client:    &http.Client{Timeout: fetchTimeout},
		now:       time.Now,
		log:       log,
	}
}

// CheckForUpdates is the entry point used after every command.
func CheckForUpdates(currentVersion string, log *zerolog.Logger) {
	NewChecker(log).Check(context.Background(), currentVersion)
}

// Check never fails; every problem is logged at debug level and skipped.
func (c *Checker) Check(ctx context.Context, currentVersion string) {
	force := os.Getenv(ForceCheckEnvVar) == "1"
	if currentVersion == "development" && !force {
		c.log.Debug().Msgf("Development build, skipping update check (set %s=1 to override)", ForceCheckEnvVar)
		return
	}

	// version strings look like "version v0.4.1"
	cleaned := strings.TrimSpace(strings.Replace(currentVersion, "version", "", 1))
	current, err := semver.NewVersion(cleaned)
	if err != nil {
		c.log.Debug().Err(err).Str("version", currentVersion).Msg("Failed to parse current version")
		return
	}

	state := c.loadCache()
	latest := state.LatestVersion

	if force || c.now().Sub(state.LastCheck) > cacheDuration {
		fetched, err := c.fetchLatest(ctx)
		if err != nil {
			c.log.Debug().Err(err).Msg("Failed to fetch latest version")
		} else {
			latest = fetched
			c.saveCache(cacheState{LatestVersion: fetched, LastCheck: c.now()})
		}
	}

	if latest == "" {
		return
	}
	latestVer, err := semver.NewVersion(latest)
	if err != nil {
		c.log.Debug().Err(err).Str("tag", latest).Msg("Failed to parse latest release tag")
		return
	}

	if latestVer.GreaterThan(current) {
		fmt.Fprintf(c.out,
			"\nUpdate available! You are running %s, but %s is the latest.\nDownload it from %s\n\n",
			current.String(), latestVer.String(), releasesURL)
		return
	}
	c.log.Debug().Msgf("Current version %s is up-to-date", current.String())
}

func (c *Checker) loadCache() cacheState {
	if c.cachePath == "" {
		return cacheState{}
	}
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Debug().Err(err).Msg("Failed to read update cache")
		}
		return cacheState{}
	}
	var state cacheState
	if err := json.Unmarshal(data, &state); err != nil {
		c.log.Debug().Err(err).Msg("Update cache corrupted, ignoring")
		return cacheState{}
	}
	return state
}

func (c *Checker) saveCache(state cacheState) {
	if c.cachePath == "" {
		return
	}
	data, err := json.Marshal(state)
	if err == nil {
		err = os.MkdirAll(filepath.Dir(c.cachePath), 0o750)
	}
	if err == nil {
		err = os.WriteFile(c.cachePath, data, 0o640)
	}
	if err != nil {
		c.log.Debug().Err(err).Msg("Failed to save update cache")
	}
}

func (c *Checker) fetchLatest(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", constants.UserAgent+"-update-check")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github API returned non-200 status: %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to decode GitHub API response: %w", err)
	}
	if release.TagName == "" {
		return "", errors.New("github API response contained no tag_name")
	}
	return release.TagName, nil
}
