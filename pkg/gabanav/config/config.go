// Package config loads gabanav settings from TOML.
//
// A file looks like:
//
//	[log]
//	path = "logs/app.log"
//	level = "info"
//	internal_level = "error"
//
//	[transitions]
//	policy = "queue_all"
//	duration = "250ms"
//
//	[[transitions.rules]]
//	when = 'action == "pop"'
//	enter = "slide_right"
//	exit = "slide_right"
//	z_index = -1
//
//	[state]
//	path = "state.db"
//
//	[window]
//	title = "Demo"
//	width = 1024
//	height = 768
//
// Missing sections keep their defaults. Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/constants"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/transition"
)

// Duration is a time.Duration written as a Go duration string ("300ms").
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Log         Log         `toml:"log"`
	Transitions Transitions `toml:"transitions"`
	State       State       `toml:"state"`
	Window      Window      `toml:"window"`
	Metrics     Metrics     `toml:"metrics"`
}

type Log struct {
	Path          string `toml:"path"`
	Level         string `toml:"level"`
	InternalLevel string `toml:"internal_level"`
}

type Transitions struct {
	Policy   string   `toml:"policy"`
	Duration Duration `toml:"duration"`
	Rules    []Rule   `toml:"rules"`
}

// Rule is the file form of transition.Rule. A zero Duration uses the
// section duration.
type Rule struct {
	When     string   `toml:"when"`
	Enter    string   `toml:"enter"`
	Exit     string   `toml:"exit"`
	Duration Duration `toml:"duration"`
	ZIndex   float64  `toml:"z_index"`
}

type State struct {
	Path string `toml:"path"`
}

type Window struct {
	Title      string `toml:"title"`
	Width      int32  `toml:"width"`
	Height     int32  `toml:"height"`
	Borderless bool   `toml:"borderless"`
}

type Metrics struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: Log{Level: "info", InternalLevel: "error"},
		Transitions: Transitions{
			Policy:   transition.Interrupt.String(),
			Duration: Duration(constants.DefaultTransitionDuration),
		},
		State: State{Path: constants.DefaultStatePath},
		Window: Window{
			Title:  "gabanav",
			Width:  constants.DefaultWindowWidth,
			Height: constants.DefaultWindowHeight,
		},
		Metrics: Metrics{Namespace: "gabanav"},
	}
}

// Load reads path, or the file named by GABANAV_CONFIG when path is empty.
// With neither, it returns Default. Environment overrides are applied and
// the result is validated.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(constants.ConfigPathEnvVar)
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if cfg, err = decode(cfg, data); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes data over Default and validates it. The environment is not
// consulted.
func Parse(data []byte) (Config, error) {
	cfg, err := decode(Default(), data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(cfg Config, data []byte) (Config, error) {
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", gabanav.ErrInvalidConfig, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%w: unknown keys %s", gabanav.ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment: GABANAV_LOG for the
// internal log level, GABANAV_STATE for the state path, and WINDOW_WIDTH /
// WINDOW_HEIGHT for the window size. Unparseable sizes are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(constants.LogLevelEnvVar); v != "" {
		c.Log.InternalLevel = v
	}
	if v := os.Getenv(constants.StatePathEnvVar); v != "" {
		c.State.Path = v
	}
	if v, ok := envInt32(constants.WindowWidthEnvVar); ok {
		c.Window.Width = v
	}
	if v, ok := envInt32(constants.WindowHeightEnvVar); ok {
		c.Window.Height = v
	}
}

func envInt32(name string) (int32, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int32(v), true
}

// Validate reports every problem found, joined, each wrapping
// ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{gabanav.ErrInvalidConfig}, args...)...))
	}

	for name, level := range map[string]string{"log.level": c.Log.Level, "log.internal_level": c.Log.InternalLevel} {
		if !validLevel(level) {
			invalid("%s: unknown level %q", name, level)
		}
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}
	if c.Transitions.Duration < 0 {
		invalid("transitions.duration: negative")
	}
	if _, err := transition.NewRuleSelector[string](c.TransitionRules(), nil, transition.Instant(), nil); err != nil {
		errs = append(errs, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		invalid("window: size %dx%d", c.Window.Width, c.Window.Height)
	}
	return errors.Join(errs...)
}

func validLevel(level string) bool {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// Policy returns the configured queueing policy.
func (c Config) Policy() (transition.Policy, error) {
	return transition.ParsePolicy(c.Transitions.Policy)
}

// TransitionRules returns the rules in selector form, filling in the
// section duration where a rule has none.
func (c Config) TransitionRules() []transition.Rule {
	out := make([]transition.Rule, len(c.Transitions.Rules))
	for i, r := range c.Transitions.Rules {
		d := r.Duration.Std()
		if d == 0 {
			d = c.Transitions.Duration.Std()
		}
		out[i] = transition.Rule{When: r.When, Enter: r.Enter, Exit: r.Exit, Duration: d, ZIndex: r.ZIndex}
	}
	return out
}

// Fallback is the transform used when no rule matches.
func (c Config) Fallback() transition.ContentTransform {
	return transition.Crossfade(c.Transitions.Duration.Std())
}

// LogOptions returns the log section as gabanav.Init options.
func (c Config) LogOptions() gabanav.Options {
	return gabanav.Options{
		LogPath:          c.Log.Path,
		LogLevel:         c.Log.Level,
		InternalLogLevel: c.Log.InternalLevel,
	}
}
