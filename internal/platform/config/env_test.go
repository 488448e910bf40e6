package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"STRINGSDB_TEST_PORT" envDefault:"123"`
}

type prefixedTestConfig struct {
	PageSize int    `env:"TEST_PAGE_SIZE" envDefault:"20"`
	Store    string `env:"TEST_STORE" envDefault:"sqlite"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("STRINGSDB_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParsePrefixedEnvReadsPrefixedNames(t *testing.T) {
	t.Setenv("STRINGSDB_TEST_PAGE_SIZE", "50")
	t.Setenv("TEST_STORE", "memory")

	var cfg prefixedTestConfig
	if err := ParsePrefixedEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.PageSize != 50 {
		t.Fatalf("page size = %d, want 50", cfg.PageSize)
	}
	if cfg.Store != "sqlite" {
		t.Fatalf("store = %q, want default sqlite (unprefixed name must be ignored)", cfg.Store)
	}
}
