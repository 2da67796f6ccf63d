package config

import (
	"testing"
	"time"
)

func TestDelaySpreadsBudgetAcrossPool(t *testing.T) {
	cfg := &Config{APIKeys: []string{"a", "b"}, RPMPerKey: 15}

	// 2 keys at 15 rpm each → 30 requests/minute aggregate → 2s between rows.
	if got, want := cfg.Delay(), 2*time.Second; got != want {
		t.Errorf("Delay() = %v; want %v", got, want)
	}
}

func TestValidateRejectsEmptyPools(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no keys", Config{VisionModels: []string{"m"}, RPMPerKey: 15}},
		{"no models", Config{APIKeys: []string{"k"}, RPMPerKey: 15}},
		{"zero rpm", Config{APIKeys: []string{"k"}, VisionModels: []string{"m"}}},
	}

	for _, tt := range tests {
		if err := tt.cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() should fail", tt.name)
		}
	}

	ok := Config{APIKeys: []string{"k"}, VisionModels: []string{"m"}, RPMPerKey: 15}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
