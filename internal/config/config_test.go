package config

import (
	"os"
	"testing"
)

func TestConfigLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("NOTES_BUILD_TARGET")
	_ = os.Unsetenv("NOTES_DB_DRIVER")
	_ = os.Unsetenv("NOTES_HTTP_PORT")
	_ = os.Unsetenv("NOTES_OIDC_ISSUER")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.BuildTarget != "local" || cfg.DBDriver != "sqlite" || cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AuthMode != "static" {
		t.Fatalf("expected static auth mode without issuer, got %s", cfg.AuthMode)
	}
	if cfg.ObjectStoreBucket != "notes-images" {
		t.Fatalf("unexpected default bucket: %s", cfg.ObjectStoreBucket)
	}
}

func TestConfigLoad_CloudTargetDerivesPostgres(t *testing.T) {
	_ = os.Setenv("NOTES_BUILD_TARGET", "cloud")
	defer func() { _ = os.Unsetenv("NOTES_BUILD_TARGET") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("cloud target should derive postgres, got %s", cfg.DBDriver)
	}
}

func TestConfigLoad_IssuerSelectsOIDC(t *testing.T) {
	_ = os.Setenv("NOTES_OIDC_ISSUER", "https://keycloak.example.test/realms/notes")
	defer func() { _ = os.Unsetenv("NOTES_OIDC_ISSUER") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.AuthMode != "oidc" {
		t.Fatalf("issuer should select oidc auth mode, got %s", cfg.AuthMode)
	}
}

func TestResolveDefaults_Rejections(t *testing.T) {
	c := &Config{BuildTarget: "mainframe"}
	if err := c.ResolveDefaults(); err == nil {
		t.Fatal("expected error for unknown build target")
	}

	c = &Config{BuildTarget: "local", DBDriver: "oracle"}
	if err := c.ResolveDefaults(); err == nil {
		t.Fatal("expected error for unknown db driver")
	}

	c = &Config{BuildTarget: "local", AuthMode: "oidc"}
	if err := c.ResolveDefaults(); err == nil {
		t.Fatal("expected error for oidc mode without issuer")
	}
}
