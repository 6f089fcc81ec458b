package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != "5175" || cfg.MaxIncorrect != 6 || cfg.CookieName != "hangman_token" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Production() {
		t.Fatal("default config reports production")
	}
	if cfg.GameRetention != time.Hour {
		t.Fatalf("GameRetention = %v", cfg.GameRetention)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_INCORRECT", "8")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("GAME_RETENTION", "15m")

	cfg, err := Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9000" || cfg.MaxIncorrect != 8 || !cfg.Production() || cfg.GameRetention != 15*time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"not an int": "many",
		"zero":       "0",
	}
	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("MAX_INCORRECT", v)
			_, err := Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "parse env:") {
				t.Fatalf("expected parse env prefix, got %v", err)
			}
		})
	}
}
