package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/leetwatch/pkg/service/worker"
	"github.com/secmon-lab/leetwatch/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the tracker settings read from the TOML config file
type AppConfig struct {
	Tracker TrackerConfig `toml:"tracker"`
	Users   []string      `toml:"users"`
}

// TrackerConfig holds polling and fetching parameters. Durations use
// time.ParseDuration syntax.
type TrackerConfig struct {
	PollInterval     string `toml:"poll_interval"`
	StaggerDelay     string `toml:"stagger_delay"`
	SolvedCheckDelay string `toml:"solved_check_delay"`
	SubmissionLimit  int    `toml:"submission_limit"`
	Timezone         string `toml:"timezone"`

	pollInterval     time.Duration
	staggerDelay     time.Duration
	solvedCheckDelay time.Duration
	location         *time.Location
}

// DefaultAppConfig returns the settings used when no config file is given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Tracker: TrackerConfig{
			pollInterval:     worker.DefaultPollInterval,
			staggerDelay:     usecase.DefaultStaggerDelay,
			solvedCheckDelay: usecase.DefaultSolvedCheckDelay,
			SubmissionLimit:  usecase.DefaultSubmissionLimit,
			location:         time.Local,
		},
	}
}

// LoadAppConfig reads and validates the config file at path
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	cfg := DefaultAppConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse config file",
			goerr.V(ConfigPathKey, path),
			goerr.V("cause", err.Error()))
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid config file", goerr.V(ConfigPathKey, path))
	}
	return cfg, nil
}

// Validate parses durations and the timezone, and checks numeric bounds
func (a *AppConfig) Validate() error {
	t := &a.Tracker

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
		min   time.Duration
	}{
		{"poll_interval", t.PollInterval, &t.pollInterval, time.Second},
		{"stagger_delay", t.StaggerDelay, &t.staggerDelay, 0},
		{"solved_check_delay", t.SolvedCheckDelay, &t.solvedCheckDelay, 0},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return goerr.Wrap(ErrInvalidConfig, "invalid duration", goerr.V(FieldKey, d.field), goerr.V("value", d.raw))
		}
		if v < d.min {
			return goerr.Wrap(ErrInvalidConfig, "duration is too short",
				goerr.V(FieldKey, d.field),
				goerr.V("value", d.raw),
				goerr.V("min", d.min.String()))
		}
		*d.dst = v
	}

	if t.SubmissionLimit <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "submission_limit must be positive", goerr.V("value", t.SubmissionLimit))
	}

	if t.Timezone != "" {
		loc, err := time.LoadLocation(t.Timezone)
		if err != nil {
			return goerr.Wrap(ErrInvalidConfig, "unknown timezone", goerr.V(FieldKey, "timezone"), goerr.V("value", t.Timezone))
		}
		t.location = loc
	}

	seen := make(map[string]bool, len(a.Users))
	users := make([]string, 0, len(a.Users))
	for _, u := range a.Users {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		users = append(users, u)
	}
	a.Users = users

	return nil
}

func (t *TrackerConfig) Interval() time.Duration { return t.pollInterval }
func (t *TrackerConfig) Stagger() time.Duration { return t.staggerDelay }
func (t *TrackerConfig) SolvedCheckPause() time.Duration { return t.solvedCheckDelay }
func (t *TrackerConfig) Location() *time.Location { return t.location }

// UseCaseOptions converts the tracker settings into use case options
func (a *AppConfig) UseCaseOptions() []usecase.Option {
	return []usecase.Option{
		usecase.WithTimezone(a.Tracker.location),
		usecase.WithStagger(a.Tracker.staggerDelay),
		usecase.WithSolvedCheckInterval(a.Tracker.solvedCheckDelay),
		usecase.WithRecentSubmissionLimit(a.Tracker.SubmissionLimit),
	}
}

// AppConfigFile holds the --config flag
type AppConfigFile struct {
	path string
}

func (x *AppConfigFile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML config file",
			Sources:     cli.EnvVars("LEETWATCH_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Configure loads the config file, or returns defaults without one
func (x *AppConfigFile) Configure() (*AppConfig, error) {
	if x.path == "" {
		return DefaultAppConfig(), nil
	}
	return LoadAppConfig(x.path)
}
