package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/menusitemap/internal/api"
	"github.com/starford/menusitemap/internal/provider"
	"github.com/starford/menusitemap/internal/resolver"
	"github.com/starford/menusitemap/internal/sitemap"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Site      SiteConfig        `yaml:"site"`
	Sitemap   SitemapConfig     `yaml:"sitemap"`
	Database  DatabaseConfig    `yaml:"database"`
	Snapshots SnapshotsConfig   `yaml:"snapshots"`
	Auth      AuthConfig        `yaml:"auth"`
	Metrics   MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Site, &c.Sitemap, &c.Database, &c.Snapshots, &c.Auth, &c.Metrics,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
	)
}

// SiteConfig describes the site the sitemap is generated for.
type SiteConfig struct {
	// BaseURL is the site root. Empty derives it from each request.
	BaseURL string `yaml:"base_url"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, is.RequestURL),
	)
}

// SitemapConfig controls what a generation pass includes.
type SitemapConfig struct {
	IncludeMenu        bool          `yaml:"include_menu"`
	IncludeArticles    bool          `yaml:"include_articles"`
	ExcludedAliases    []string      `yaml:"excluded_aliases"`
	ReservedComponents []string      `yaml:"reserved_components"`
	CategoryLayouts    []string      `yaml:"category_layouts"`
	DeriveMissingPaths bool          `yaml:"derive_missing_paths"`
	Trigger            TriggerConfig `yaml:"trigger"`
}

// TriggerConfig is the query-string fallback that requests the sitemap.
// An empty option disables it.
type TriggerConfig struct {
	Option string `yaml:"option"`
	Plugin string `yaml:"plugin"`
	Group  string `yaml:"group"`
}

// Validate validates the sitemap configuration.
func (c *SitemapConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.CategoryLayouts, validation.Each(validation.Required)),
	); err != nil {
		return err
	}
	if c.Trigger.Option != "" && (c.Trigger.Plugin == "" || c.Trigger.Group == "") {
		return errors.New("sitemap: trigger needs plugin and group when option is set")
	}
	return nil
}

// Options converts the section into generator options.
func (c *SitemapConfig) Options() sitemap.Options {
	return sitemap.Options{
		IncludeMenu:     c.IncludeMenu,
		IncludeArticles: c.IncludeArticles,
		Rules: resolver.Rules{
			ExcludedAliases:    c.ExcludedAliases,
			ReservedComponents: c.ReservedComponents,
		},
		CategoryLayouts:    c.CategoryLayouts,
		DeriveMissingPaths: c.DeriveMissingPaths,
	}
}

// APITrigger converts the trigger into its HTTP form.
func (c *SitemapConfig) APITrigger() api.Trigger {
	return api.Trigger{Option: c.Trigger.Option, Plugin: c.Trigger.Plugin, Group: c.Trigger.Group}
}

// DatabaseConfig holds the data source configuration.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	TablePrefix string `yaml:"table_prefix"`
	ApplySchema bool   `yaml:"apply_schema"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(provider.DriverSQLite, provider.DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.TablePrefix, validation.Match(tablePrefixPattern)),
	)
}

// ProviderConfig converts the section into store options.
func (c *DatabaseConfig) ProviderConfig() provider.Config {
	return provider.Config{
		Driver:      c.Driver,
		DSN:         c.DSN,
		TablePrefix: c.TablePrefix,
		ApplySchema: c.ApplySchema,
	}
}

// SnapshotsConfig holds the snapshot directory configuration. An empty Dir
// disables snapshot import.
type SnapshotsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// Validate validates the snapshots configuration.
func (c *SnapshotsConfig) Validate() error {
	if c.Watch && c.Dir == "" {
		return errors.New("snapshots: watch requires dir")
	}
	return nil
}

// Enabled reports whether a snapshot directory is configured.
func (c *SnapshotsConfig) Enabled() bool {
	return c.Dir != ""
}

// AuthConfig holds authentication configuration for the admin API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
//
// The public sitemap endpoint is never authenticated.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required, validation.Match(regexp.MustCompile(`^/`)))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	rules := resolver.DefaultRules()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:         8080,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
			},
		},
		Sitemap: SitemapConfig{
			IncludeMenu:        true,
			IncludeArticles:    true,
			ExcludedAliases:    rules.ExcludedAliases,
			ReservedComponents: rules.ReservedComponents,
			CategoryLayouts:    []string{"blog"},
			Trigger: TriggerConfig{
				Option: "com_ajax",
				Plugin: "xmlsitemap",
				Group:  "system",
			},
		},
		Database: DatabaseConfig{
			Driver:      provider.DriverSQLite,
			DSN:         "./menusitemap.db",
			ApplySchema: true,
		},
		Snapshots: SnapshotsConfig{
			Dir:   "./snapshots",
			Watch: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
