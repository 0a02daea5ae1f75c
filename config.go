package warmup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type (
	// configFile is the top-level configuration document.
	configFile struct {
		Initializers map[string]InitializerConfig `json:"initializers" yaml:"initializers"`
	}

	// InitializerConfig holds the decoded configuration of one initializer.
	// Embed it in your own config struct for JSON or YAML unmarshaling, then
	// call [BuildOptions] to obtain options for [NewInitializer].
	InitializerConfig struct {
		// Retry configures the attempt ceiling and pacing.
		// Optional. Example: {"max_attempts": 3, "backoff": "constant",
		// "base_delay": "2s"}.
		Retry *RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
		// DegradedMessage is the advisory shown once attempts are exhausted.
		// Optional. Defaults to [DefaultDegradedMessage].
		DegradedMessage *string `json:"degraded_message,omitempty" yaml:"degraded_message,omitempty"`
		// Criticality sets how a degraded initializer affects readiness.
		// Optional. One of: "none", "degraded", "critical".
		Criticality *string `json:"criticality,omitempty" yaml:"criticality,omitempty"`
	}

	// RetryConfig holds retry configuration values.
	RetryConfig struct {
		// Backoff is the backoff strategy name.
		// Optional, defaults to "constant". One of: "constant",
		// "exponential", "linear", "exponential_jitter".
		Backoff *string `json:"backoff,omitempty" yaml:"backoff,omitempty"`
		// BaseDelay is the base pause between attempts.
		// Required when Backoff is set. Parsed via time.ParseDuration.
		// Example: "2s".
		BaseDelay *string `json:"base_delay,omitempty" yaml:"base_delay,omitempty"`
		// MaxDelay caps the pause.
		// Optional. Parsed via time.ParseDuration. Example: "30s".
		MaxDelay *string `json:"max_delay,omitempty" yaml:"max_delay,omitempty"`
		// AttemptTimeout bounds each attempt.
		// Optional. Parsed via time.ParseDuration. Example: "10s".
		AttemptTimeout *string `json:"attempt_timeout,omitempty" yaml:"attempt_timeout,omitempty"`
		// MaxAttempts is the attempt ceiling.
		// Optional, defaults to 3. Must be positive.
		MaxAttempts *int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	}
)

// LoadConfig reads a JSON or YAML configuration file (chosen by the .yaml or
// .yml extension) and stores the initializer configurations in a [Registry].
// Initializers are not created until [GetInitializer] is called, so the
// caller can supply the engine, client configuration and code-level options.
//
// Every entry is validated eagerly so errors surface at load time.
func LoadConfig(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("warmup: read config: %w", err)
	}

	var cfg configFile

	if err = unmarshalByExt(path, data, &cfg); err != nil {
		return nil, fmt.Errorf("warmup: parse config: %w", err)
	}

	for name, ic := range cfg.Initializers {
		if _, buildErr := BuildOptions(&ic); buildErr != nil {
			return nil, fmt.Errorf("warmup: initializer %q: %w", name, buildErr)
		}
	}

	reg := NewRegistry()
	reg.mu.Lock()
	reg.configs = cfg.Initializers
	reg.mu.Unlock()

	return reg, nil
}

// unmarshalByExt decodes data as YAML for .yaml/.yml paths and as JSON
// otherwise.
func unmarshalByExt(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v) //nolint:wrapcheck // wrapped by caller
	default:
		return json.Unmarshal(data, v) //nolint:wrapcheck // wrapped by caller
	}
}

// BuildOptions converts an [InitializerConfig] into option values for
// [NewInitializer].
func BuildOptions(ic *InitializerConfig) ([]any, error) {
	var opts []any

	if ic.Retry != nil {
		policy, err := ic.Retry.policy()
		if err != nil {
			return nil, fmt.Errorf("retry: %w", err)
		}

		opts = append(opts, WithRetryPolicy(policy))
	}

	if ic.DegradedMessage != nil {
		opts = append(opts, WithDegradedMessage(*ic.DegradedMessage))
	}

	if ic.Criticality != nil {
		crit, ok := ParseCriticality(*ic.Criticality)
		if !ok {
			return nil, fmt.Errorf("unknown criticality: %q", *ic.Criticality)
		}

		opts = append(opts, WithCriticality(crit))
	}

	return opts, nil
}

// policy builds a validated RetryPolicy, starting from the defaults.
func (rc *RetryConfig) policy() (RetryPolicy, error) {
	p := DefaultRetryPolicy()

	if rc.MaxAttempts != nil {
		p.MaxAttempts = *rc.MaxAttempts
	}

	if rc.Backoff != nil || rc.BaseDelay != nil {
		strategy, err := parseBackoffStrategy(rc.Backoff, rc.BaseDelay)
		if err != nil {
			return RetryPolicy{}, err
		}

		p.Backoff = strategy
	}

	var err error

	if p.MaxDelay, err = optionalDuration("max_delay", rc.MaxDelay); err != nil {
		return RetryPolicy{}, err
	}

	if p.AttemptTimeout, err = optionalDuration("attempt_timeout", rc.AttemptTimeout); err != nil {
		return RetryPolicy{}, err
	}

	if err = p.Validate(); err != nil {
		return RetryPolicy{}, err
	}

	return p, nil
}

func optionalDuration(field string, s *string) (time.Duration, error) {
	if s == nil {
		return 0, nil
	}

	d, err := time.ParseDuration(*s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}

	return d, nil
}

// parseBackoffStrategy maps a backoff name and base delay to a
// BackoffStrategy. A missing name means "constant"; the base delay is
// required.
//
//nolint:ireturn // returns interface by design for strategy pattern
func parseBackoffStrategy(name, baseDelay *string) (BackoffStrategy, error) {
	if baseDelay == nil {
		return nil, errors.New("parsing backoff strategy: base_delay is required")
	}

	base, err := time.ParseDuration(*baseDelay)
	if err != nil {
		return nil, fmt.Errorf("base_delay: %w", err)
	}

	kind := "constant"
	if name != nil {
		kind = *name
	}

	switch kind {
	case "constant":
		return ConstantBackoff(base), nil
	case "exponential":
		return ExponentialBackoff(base), nil
	case "linear":
		return LinearBackoff(base), nil
	case "exponential_jitter":
		return ExponentialJitterBackoff(base), nil
	default:
		return nil, fmt.Errorf("unknown backoff strategy: %q", kind)
	}
}

// Names returns the sorted names of the stored initializer configurations.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// GetInitializer creates a named [Initializer] from the configuration stored
// in a config-loaded [Registry] and registers it there. If the name is not
// found, an initializer with only the provided opts is created.
//
// User-provided options are applied after config options, so they take
// precedence.
func GetInitializer[C, T any](reg *Registry, name string, engine Engine[C, T], cfg C, opts ...any) *Initializer[C, T] {
	reg.mu.Lock()
	ic, ok := reg.configs[name]
	reg.mu.Unlock()

	allOpts := []any{WithRegistry(reg)}

	if ok {
		configOpts, err := BuildOptions(&ic)
		if err == nil {
			allOpts = append(allOpts, configOpts...)
		}
	}

	allOpts = append(allOpts, opts...)

	return NewInitializer[C, T](name, engine, cfg, allOpts...)
}
