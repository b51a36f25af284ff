package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshal(t *testing.T) {
	t.Parallel()

	var cfg struct {
		Timeout Duration `yaml:"timeout"`
	}

	if err := yaml.Unmarshal([]byte("timeout: 8s"), &cfg); err != nil {
		t.Fatalf("unmarshal returned error: %v", err)
	}
	if cfg.Timeout.Std() != 8*time.Second {
		t.Fatalf("unexpected duration: %v", cfg.Timeout.Std())
	}

	if err := yaml.Unmarshal([]byte("timeout: bogus"), &cfg); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
