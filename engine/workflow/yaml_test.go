package workflow

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestWorkflowUnmarshalYAMLParsesDurations(t *testing.T) {
	doc := `
id: wf1
name: test
version: "1"
timeout: 15s
steps:
  - id: a
    service: svc
    action: act
    timeout: 2s
    retry:
      maxAttempts: 3
      initialDelay: 200ms
      multiplier: 2
    cache:
      enabled: true
      ttl: 5m
`
	var w Workflow
	if err := yaml.Unmarshal([]byte(doc), &w); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Timeout != 15*time.Second {
		t.Fatalf("expected workflow timeout 15s, got %v", w.Timeout)
	}
	if len(w.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(w.Steps))
	}
	s := w.Steps[0]
	if s.Timeout != 2*time.Second {
		t.Fatalf("expected step timeout 2s, got %v", s.Timeout)
	}
	if s.Retry == nil || s.Retry.InitialDelay != 200*time.Millisecond || s.Retry.Multiplier != 2 {
		t.Fatalf("expected retry initialDelay 200ms multiplier 2, got %#v", s.Retry)
	}
	if !s.Cache.Enabled || s.Cache.TTL != 5*time.Minute {
		t.Fatalf("expected cache enabled with ttl 5m, got %#v", s.Cache)
	}
}
