package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvToken, "")
	t.Setenv(EnvDataDir, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DataDir != "." || cfg.LogLevel != "info" || cfg.RequestTimeoutSeconds != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rolebot.yaml")
	content := `token: from-file
data_dir: /srv/rolebot
guild_ids: ["111", "222"]
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name        string
		envToken    string
		envDataDir  string
		wantToken   string
		wantDataDir string
	}{
		{
			name:        "file values",
			wantToken:   "from-file",
			wantDataDir: "/srv/rolebot",
		},
		{
			name:        "environment wins",
			envToken:    "from-env",
			envDataDir:  "/tmp/data",
			wantToken:   "from-env",
			wantDataDir: "/tmp/data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvToken, tt.envToken)
			t.Setenv(EnvDataDir, tt.envDataDir)

			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if cfg.Token != tt.wantToken {
				t.Errorf("Token = %q, want %q", cfg.Token, tt.wantToken)
			}
			if cfg.DataDir != tt.wantDataDir {
				t.Errorf("DataDir = %q, want %q", cfg.DataDir, tt.wantDataDir)
			}
			if len(cfg.GuildIDs) != 2 || cfg.LogLevel != "debug" {
				t.Errorf("unexpected config: %+v", cfg)
			}
			if cfg.RequestTimeoutSeconds != 10 {
				t.Errorf("expected unset field to keep default, got %d", cfg.RequestTimeoutSeconds)
			}
		})
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("data_dir: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSaveConfig_OmitsToken(t *testing.T) {
	t.Setenv(EnvToken, "")
	t.Setenv(EnvDataDir, "")
	path := filepath.Join(t.TempDir(), "sub", "rolebot.yaml")

	cfg := Default()
	cfg.Token = "secret"
	cfg.DataDir = "/data"
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "secret") {
		t.Errorf("token must not be written to disk:\n%s", data)
	}
	if cfg.Token != "secret" {
		t.Error("SaveConfig must not mutate its argument")
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.DataDir != "/data" {
		t.Errorf("DataDir = %q, want /data", loaded.DataDir)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}

	cfg.Token = "t"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	cfg.RequestTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestRequestTimeout(t *testing.T) {
	cfg := Default()
	if got := cfg.RequestTimeout(); got != 10*time.Second {
		t.Errorf("expected 10s, got %v", got)
	}
}
