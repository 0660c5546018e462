package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestSiteConfig_BaseURL(t *testing.T) {
	good := SiteConfig{BaseURL: "https://www.example.com"}
	if err := good.Validate(); err != nil {
		t.Errorf("valid url rejected: %v", err)
	}
	empty := SiteConfig{}
	if err := empty.Validate(); err != nil {
		t.Errorf("empty url should derive from request: %v", err)
	}
	bad := SiteConfig{BaseURL: "not a url"}
	if err := bad.Validate(); err == nil {
		t.Error("invalid url accepted")
	}
	bare := SiteConfig{BaseURL: "www.example.com"}
	if err := bare.Validate(); err == nil {
		t.Error("url without scheme accepted")
	}
}

func TestDatabaseConfig_Driver(t *testing.T) {
	cfg := DatabaseConfig{Driver: "mysql", DSN: "x"}
	if err := cfg.Validate(); err == nil {
		t.Error("unsupported driver accepted")
	}
	cfg = DatabaseConfig{Driver: "postgres", DSN: "postgres://localhost/cms", TablePrefix: "jos_"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("postgres rejected: %v", err)
	}
}

func TestDatabaseConfig_TablePrefix(t *testing.T) {
	cfg := DatabaseConfig{Driver: "sqlite3", DSN: "x.db", TablePrefix: "jos_; DROP"}
	if err := cfg.Validate(); err == nil {
		t.Error("unsafe table prefix accepted")
	}
}

func TestSnapshotsConfig_WatchNeedsDir(t *testing.T) {
	cfg := SnapshotsConfig{Watch: true}
	if err := cfg.Validate(); err == nil {
		t.Error("watch without dir accepted")
	}
}

func TestSitemapConfig_Trigger(t *testing.T) {
	cfg := NewDefaultConfig().Sitemap
	cfg.Trigger.Group = ""
	if err := cfg.Validate(); err == nil {
		t.Error("incomplete trigger accepted")
	}
	cfg.Trigger = TriggerConfig{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled trigger rejected: %v", err)
	}
}

func TestSitemapConfig_Options(t *testing.T) {
	cfg := NewDefaultConfig().Sitemap
	cfg.IncludeArticles = false
	cfg.DeriveMissingPaths = true

	opts := cfg.Options()
	if !opts.IncludeMenu || opts.IncludeArticles || !opts.DeriveMissingPaths {
		t.Errorf("options = %+v", opts)
	}
	if len(opts.Rules.ReservedComponents) != 1 || opts.Rules.ReservedComponents[0] != "com_users" {
		t.Errorf("reserved components = %v", opts.Rules.ReservedComponents)
	}
	if trig := cfg.APITrigger(); trig.Option != "com_ajax" || trig.Plugin != "xmlsitemap" || trig.Group != "system" {
		t.Errorf("trigger = %+v", trig)
	}
}

func TestMetricsConfig_Path(t *testing.T) {
	cfg := MetricsConfig{Enabled: true, Path: "metrics"}
	if err := cfg.Validate(); err == nil {
		t.Error("relative metrics path accepted")
	}
	cfg = MetricsConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled metrics rejected: %v", err)
	}
}
