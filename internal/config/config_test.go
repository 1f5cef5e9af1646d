package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, yaml string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadConfigDefaults(t *testing.T) {
	writeConfigFile(t, "server:\n  port: 0\n")
	for _, key := range []string{"PRIVATE_KEY", "DATABASE_URL", "EMAIL_USERNAME", "EMAIL_HOST", "EMAIL_PORT"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Backend != "firebase" {
		t.Errorf("backend = %q, want firebase", cfg.Store.Backend)
	}
	if cfg.Firebase.AuthURI == "" || cfg.Firebase.TokenURI == "" {
		t.Errorf("provider endpoints not defaulted: %+v", cfg.Firebase)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	writeConfigFile(t, `server:
  port: 9090
store:
  backend: memory
email:
  smtp_host: mail.example.com
  smtp_port: 2525
`)
	t.Setenv("PRIVATE_KEY", "key-material")
	t.Setenv("DATABASE_URL", "https://db.example.com")
	t.Setenv("FIREBASE_API_KEY", "web-key")
	t.Setenv("EMAIL_USERNAME", "robot@example.com")
	t.Setenv("EMAIL_ADDITIONAL_PSW", "app-password")
	t.Setenv("EMAIL_HOST", "")
	t.Setenv("EMAIL_PORT", "")

	cfg := LoadConfig()
	if cfg.Server.Port != 9090 || cfg.Store.Backend != "memory" {
		t.Errorf("yaml values lost: port %d backend %q", cfg.Server.Port, cfg.Store.Backend)
	}
	if cfg.Firebase.PrivateKey != "key-material" {
		t.Errorf("private key = %q", cfg.Firebase.PrivateKey)
	}
	if cfg.Firebase.DatabaseURL != "https://db.example.com" {
		t.Errorf("database url = %q", cfg.Firebase.DatabaseURL)
	}
	if cfg.Firebase.WebAPIKey != "web-key" {
		t.Errorf("web api key = %q", cfg.Firebase.WebAPIKey)
	}
	if cfg.Email.SMTPUser != "robot@example.com" || cfg.Email.SMTPPassword != "app-password" {
		t.Errorf("smtp credentials = %q / %q", cfg.Email.SMTPUser, cfg.Email.SMTPPassword)
	}
	if cfg.Email.FromEmail != "robot@example.com" {
		t.Errorf("from = %q, want username fallback", cfg.Email.FromEmail)
	}

	// Unset env must not clobber yaml-provided values.
	if cfg.Email.SMTPHost != "mail.example.com" || cfg.Email.SMTPPort != 2525 {
		t.Errorf("yaml smtp settings clobbered: %q:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
	}
}
