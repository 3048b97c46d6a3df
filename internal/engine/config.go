package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ErrConfiguration marks invalid preset configuration, such as an unknown
// rule name or a negative weight. It is always surfaced before search.
var ErrConfiguration = errors.New("invalid configuration")

// RuleConfig is the user configuration of one soft constraint rule.
type RuleConfig struct {
	Enabled bool
	// Weight is the cost of one violation. The higher the weight, the worse
	// it is to violate the rule.
	Weight int64
	// Priority is the optimization layer. Rules with higher priority are
	// optimized before those with lower priority.
	Priority int
}

// Options bounds the resources of a solver run.
type Options struct {
	MaxTime       time.Duration // zero means unbounded
	MaxCandidates int64         // zero means unbounded
	Workers       int           // zero means GOMAXPROCS
	MaxSpacing    int           // weekday gap tolerated by the max_spacing rule
}

// Config is the full preset: per-rule settings plus resource options.
type Config struct {
	Rules   map[string]RuleConfig
	Options Options
}

// DefaultConfig returns the bundled preset: every rule enabled, conflicts
// between related units optimized first.
func DefaultConfig() Config {
	return Config{
		Rules: map[string]RuleConfig{
			"non_morning":         {Enabled: true, Weight: 1, Priority: 1},
			"curriculum_conflict": {Enabled: true, Weight: 10, Priority: 2},
			"parts_of_day":        {Enabled: true, Weight: 2, Priority: 1},
			"friday_afternoon":    {Enabled: true, Weight: 5, Priority: 1},
			"teacher_preference":  {Enabled: true, Weight: 3, Priority: 1},
			"max_spacing":         {Enabled: true, Weight: 2, Priority: 1},
			"science_conflict":    {Enabled: true, Weight: 10, Priority: 2},
		},
		Options: Options{MaxSpacing: 3},
	}
}

// Validate reports configuration errors: unknown rule names, negative
// weights or nonsensical resource bounds.
func (config Config) Validate() error {
	for name, rule := range config.Rules {
		if _, known := ruleRegistry[name]; !known {
			return fmt.Errorf("%w: unknown rule %q (bundled rules: %v)", ErrConfiguration, name, RuleNames())
		}
		if rule.Weight < 0 {
			return fmt.Errorf("%w: rule %q has negative weight %v", ErrConfiguration, name, rule.Weight)
		}
	}
	if config.Options.MaxTime < 0 {
		return fmt.Errorf("%w: max_time must not be negative", ErrConfiguration)
	}
	if config.Options.MaxCandidates < 0 {
		return fmt.Errorf("%w: max_candidates must not be negative", ErrConfiguration)
	}
	if config.Options.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrConfiguration)
	}
	if config.Options.MaxSpacing < 1 {
		return fmt.Errorf("%w: max_spacing must be at least 1", ErrConfiguration)
	}
	return nil
}

type configDocument struct {
	Rules map[string]struct {
		Enabled  *bool  `mapstructure:"enabled"`
		Weight   *int64 `mapstructure:"weight"`
		Priority *int   `mapstructure:"priority"`
	} `mapstructure:"rules"`
	Options struct {
		MaxTimeSeconds *int   `mapstructure:"max_time_seconds"`
		MaxCandidates  *int64 `mapstructure:"max_candidates"`
		Workers        *int   `mapstructure:"workers"`
		MaxSpacing     *int   `mapstructure:"max_spacing"`
	} `mapstructure:"options"`
}

// ConfigFromJSON loads a preset file and overlays it on the bundled
// defaults: rules and options missing from the file keep their default
// values.
func ConfigFromJSON(file string) (Config, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Config{}, err
	}

	var documentJSON map[string]any
	if err := json.Unmarshal(bytes, &documentJSON); err != nil {
		return Config{}, err
	}

	var document configDocument
	if err := mapstructure.Decode(documentJSON, &document); err != nil {
		return Config{}, err
	}

	config := DefaultConfig()
	for name, overlay := range document.Rules {
		rule := config.Rules[name]
		if overlay.Enabled != nil {
			rule.Enabled = *overlay.Enabled
		}
		if overlay.Weight != nil {
			rule.Weight = *overlay.Weight
		}
		if overlay.Priority != nil {
			rule.Priority = *overlay.Priority
		}
		config.Rules[name] = rule
	}
	if document.Options.MaxTimeSeconds != nil {
		config.Options.MaxTime = time.Duration(*document.Options.MaxTimeSeconds) * time.Second
	}
	if document.Options.MaxCandidates != nil {
		config.Options.MaxCandidates = *document.Options.MaxCandidates
	}
	if document.Options.Workers != nil {
		config.Options.Workers = *document.Options.Workers
	}
	if document.Options.MaxSpacing != nil {
		config.Options.MaxSpacing = *document.Options.MaxSpacing
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
