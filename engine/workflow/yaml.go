package workflow

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Durations in YAML templates are written as human strings ("200ms", "15s",
// "5m"), the same convention the platform's duration-bearing config uses
// elsewhere; the shadow types below parse them into time.Duration at decode
// time so the public IR types keep plain time.Duration fields everywhere
// else in the engine.

type retrySpecYAML struct {
	MaxAttempts    int      `yaml:"maxAttempts"`
	InitialDelay   string   `yaml:"initialDelay"`
	Multiplier     float64  `yaml:"multiplier"`
	RetryableCodes []string `yaml:"retryableCodes,omitempty"`
}

// UnmarshalYAML lets RetrySpec.InitialDelay be written as a duration string.
func (r *RetrySpec) UnmarshalYAML(value *yaml.Node) error {
	var shadow retrySpecYAML
	if err := value.Decode(&shadow); err != nil {
		return err
	}
	r.MaxAttempts = shadow.MaxAttempts
	r.Multiplier = shadow.Multiplier
	r.RetryableCodes = shadow.RetryableCodes
	if shadow.InitialDelay != "" {
		d, err := time.ParseDuration(shadow.InitialDelay)
		if err != nil {
			return fmt.Errorf("retry.initialDelay: %w", err)
		}
		r.InitialDelay = d
	}
	return nil
}

type cacheSpecYAML struct {
	Enabled   bool     `yaml:"enabled"`
	KeyPrefix string   `yaml:"keyPrefix,omitempty"`
	TTL       string   `yaml:"ttl,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
}

// UnmarshalYAML lets CacheSpec.TTL be written as a duration string.
func (c *CacheSpec) UnmarshalYAML(value *yaml.Node) error {
	var shadow cacheSpecYAML
	if err := value.Decode(&shadow); err != nil {
		return err
	}
	c.Enabled = shadow.Enabled
	c.KeyPrefix = shadow.KeyPrefix
	c.Tags = shadow.Tags
	if shadow.TTL != "" {
		d, err := time.ParseDuration(shadow.TTL)
		if err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
		c.TTL = d
	}
	return nil
}

type stepYAML struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name,omitempty"`
	Service    string      `yaml:"service"`
	Action     string      `yaml:"action"`
	Input      InputSpec   `yaml:"input,omitempty"`
	Conditions []Condition `yaml:"conditions,omitempty"`
	OnSuccess  string      `yaml:"onSuccess,omitempty"`
	OnFailure  string      `yaml:"onFailure,omitempty"`
	Parallel   []string    `yaml:"parallel,omitempty"`
	Retry      *RetrySpec  `yaml:"retry,omitempty"`
	Timeout    string      `yaml:"timeout,omitempty"`
	Cache      CacheSpec   `yaml:"cache,omitempty"`
}

// UnmarshalYAML lets Step.Timeout be written as a duration string.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var shadow stepYAML
	if err := value.Decode(&shadow); err != nil {
		return err
	}
	s.ID = shadow.ID
	s.Name = shadow.Name
	s.Service = shadow.Service
	s.Action = shadow.Action
	s.Input = shadow.Input
	s.Conditions = shadow.Conditions
	s.OnSuccess = shadow.OnSuccess
	s.OnFailure = shadow.OnFailure
	s.Parallel = shadow.Parallel
	s.Retry = shadow.Retry
	s.Cache = shadow.Cache
	if shadow.Timeout != "" {
		d, err := time.ParseDuration(shadow.Timeout)
		if err != nil {
			return fmt.Errorf("step %s: timeout: %w", shadow.ID, err)
		}
		s.Timeout = d
	}
	return nil
}

type workflowYAML struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Version     string            `yaml:"version"`
	Steps       []Step            `yaml:"steps"`
	Flag        *FlagTrigger      `yaml:"flag,omitempty"`
	ErrorAction ErrorAction       `yaml:"errorAction,omitempty"`
	Timeout     string            `yaml:"timeout,omitempty"`
	Metadata    map[string]string `yaml:"metadata,omitempty"`
}

// UnmarshalYAML lets Workflow.Timeout be written as a duration string.
func (w *Workflow) UnmarshalYAML(value *yaml.Node) error {
	var shadow workflowYAML
	if err := value.Decode(&shadow); err != nil {
		return err
	}
	w.ID = shadow.ID
	w.Name = shadow.Name
	w.Version = shadow.Version
	w.Steps = shadow.Steps
	w.Flag = shadow.Flag
	w.ErrorAction = shadow.ErrorAction
	w.Metadata = shadow.Metadata
	if shadow.Timeout != "" {
		d, err := time.ParseDuration(shadow.Timeout)
		if err != nil {
			return fmt.Errorf("workflow %s: timeout: %w", shadow.ID, err)
		}
		w.Timeout = d
	}
	return nil
}
