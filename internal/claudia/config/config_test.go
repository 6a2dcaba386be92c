package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claudia.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("MATRIX_ACCESS_TOKEN", "syt_test_token")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
}

func TestLoadDefaultsWithEnvOverrides(t *testing.T) {
	setCredentials(t)
	t.Setenv("CLAUDIA_HOMESERVER", "https://matrix.example.org")
	t.Setenv("CLAUDIA_USER_ID", "@claudia:example.org")
	t.Setenv("CLAUDIA_MAX_HISTORY_LENGTH", "10")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Homeserver != "https://matrix.example.org" {
		t.Errorf("unexpected homeserver: %q", cfg.Homeserver)
	}
	if cfg.MaxHistoryLength != 10 {
		t.Errorf("expected env override for history length, got %d", cfg.MaxHistoryLength)
	}
	if cfg.CommandPrefix != "!" {
		t.Errorf("expected default prefix, got %q", cfg.CommandPrefix)
	}
	if cfg.MaxHistoryAge() != 48*time.Hour {
		t.Errorf("expected default history age of 48h, got %v", cfg.MaxHistoryAge())
	}
}

func TestLoadFromFile(t *testing.T) {
	setCredentials(t)
	path := writeConfigFile(t, `
homeserver: https://matrix.example.org
user_id: "@claudia:example.org"
rooms:
  - "!general:example.org"
model: claude-3-5-sonnet-20241022
max_history_age_seconds: 3600
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Rooms) != 1 || cfg.Rooms[0] != "!general:example.org" {
		t.Errorf("unexpected rooms: %v", cfg.Rooms)
	}
	if cfg.MaxHistoryAge() != time.Hour {
		t.Errorf("expected 1h history age, got %v", cfg.MaxHistoryAge())
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	setCredentials(t)
	path := writeConfigFile(t, `
homeserver: https://matrix.example.org
user_id: "@claudia:example.org"
homserver_typo: oops
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected schema validation to reject the unknown key")
	}
}

func TestLoadRejectsWrongTypes(t *testing.T) {
	setCredentials(t)
	path := writeConfigFile(t, `
homeserver: https://matrix.example.org
user_id: "@claudia:example.org"
max_tokens: lots
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected schema validation to reject the non-integer max_tokens")
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("MATRIX_ACCESS_TOKEN", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDIA_HOMESERVER", "https://matrix.example.org")
	t.Setenv("CLAUDIA_USER_ID", "@claudia:example.org")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected an error when credentials are missing")
	}
	if !strings.Contains(err.Error(), "MATRIX_ACCESS_TOKEN") {
		t.Errorf("expected the error to name the missing variable, got %v", err)
	}
}

func TestEnvTakesPrecedenceOverFile(t *testing.T) {
	setCredentials(t)
	path := writeConfigFile(t, `
homeserver: https://file.example.org
user_id: "@claudia:example.org"
`)
	t.Setenv("CLAUDIA_HOMESERVER", "https://env.example.org")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Homeserver != "https://env.example.org" {
		t.Errorf("expected the environment to win, got %q", cfg.Homeserver)
	}
}
