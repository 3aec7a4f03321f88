package app

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
telegram:
  token: "123:abc"
  admin_id: 777
pixabay:
  key: "pix-key"
database:
  host: localhost
  port: "5432"
  user: u
  password: p
  name: db
  sslmode: disable
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Core.Telegram.AdminID != 777 {
		t.Fatalf("admin id = %d", cfg.Core.Telegram.AdminID)
	}
	if cfg.Core.Telegram.RunMode != "longpoll" {
		t.Fatalf("run mode = %q, expected longpoll default", cfg.Core.Telegram.RunMode)
	}
	if cfg.Health.Listen != ":8081" {
		t.Fatalf("health listen = %q, expected default", cfg.Health.Listen)
	}
	if cfg.CoreConfig() != &cfg.Core {
		t.Fatal("CoreConfig must expose the embedded block")
	}
}

func TestLoadConfigMissingPixabayKey(t *testing.T) {
	body := `
telegram:
  token: "123:abc"
  admin_id: 777
`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Fatal("expected error for missing pixabay key")
	}
}

func TestLoadConfigMissingAdmin(t *testing.T) {
	body := `
telegram:
  token: "123:abc"
pixabay:
  key: "k"
`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Fatal("expected error for missing admin id")
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	body := `
pixabay:
  key: "k"
`
	if _, err := LoadConfig(writeConfig(t, body)); err == nil {
		t.Fatal("expected error for missing token")
	}
}
