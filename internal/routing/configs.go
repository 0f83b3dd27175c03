package routing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicreach/backend/internal/cache"
	"github.com/civicreach/backend/internal/db"
	"github.com/civicreach/backend/internal/models"
)

const routeTemplatesCacheKey = "routing:templates"

// ConfigStore is the slice of the persistence layer the routing configuration
// needs. *db.Store satisfies it.
type ConfigStore interface {
	ListRouteConfigs(ctx context.Context) ([]models.RouteTemplate, error)
	GetSeverityConfig(ctx context.Context, level string) (models.SeverityConfig, error)
	UpsertRouteConfig(ctx context.Context, t models.RouteTemplate, position int) error
	UpsertSeverityConfig(ctx context.Context, c models.SeverityConfig) error
}

// ConfigSource serves route templates and severity configurations with a
// read-through cache and built-in defaults, so routing never dead-ends on a
// cold or unreachable config store.
type ConfigSource struct {
	Store    ConfigStore
	Cache    *cache.Redis
	CacheTTL time.Duration
	Logger   zerolog.Logger
}

func NewConfigSource(store ConfigStore, redis *cache.Redis, ttl time.Duration, logger zerolog.Logger) *ConfigSource {
	return &ConfigSource{Store: store, Cache: redis, CacheTTL: ttl, Logger: logger}
}

// RouteTemplates returns the configured templates in order. Read failures and
// an empty table both fall back to the built-in defaults; this path never
// returns an error.
func (c *ConfigSource) RouteTemplates(ctx context.Context) []models.RouteTemplate {
	var cached []models.RouteTemplate
	if err := c.Cache.GetJSON(ctx, routeTemplatesCacheKey, &cached); err == nil && len(cached) > 0 {
		return cached
	}

	templates, err := c.Store.ListRouteConfigs(ctx)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("route config read failed, using defaults")
		return DefaultRouteTemplates()
	}
	if len(templates) == 0 {
		return DefaultRouteTemplates()
	}

	if err := c.Cache.SetJSON(ctx, routeTemplatesCacheKey, templates, c.CacheTTL); err != nil {
		c.Logger.Warn().Err(err).Msg("route config cache write failed")
	}
	return templates
}

// SeverityConfig resolves the configuration for a severity level. The level
// is normalized to title case; unknown or empty levels fall back to the
// Medium defaults.
func (c *ConfigSource) SeverityConfig(ctx context.Context, severity string) models.SeverityConfig {
	level := normalizeLevel(severity)

	cfg, err := c.Store.GetSeverityConfig(ctx, string(level))
	if err == nil {
		return cfg
	}
	if !db.IsNotFound(err) {
		c.Logger.Warn().Err(err).Str("level", string(level)).Msg("severity config read failed, using defaults")
	}
	return DefaultSeverityConfig(level)
}

// Resolve fetches the current configuration snapshot and computes the routing
// decision for one issue.
func (c *ConfigSource) Resolve(ctx context.Context, issueType string, severity models.Severity, coords *models.Coordinates) models.IssueRouting {
	templates := c.RouteTemplates(ctx)
	sevCfg := c.SeverityConfig(ctx, string(severity))
	return Resolve(templates, sevCfg, issueType, severity, coords)
}

// Initialize merge-upserts the default severity and route configurations.
// Individual row failures are logged and skipped; the returned error reports
// that some rows failed without aborting the rest.
func (c *ConfigSource) Initialize(ctx context.Context) error {
	var errs []error

	for _, cfg := range DefaultSeverityConfigs() {
		if err := c.Store.UpsertSeverityConfig(ctx, cfg); err != nil {
			c.Logger.Error().Err(err).Str("level", string(cfg.Level)).Msg("severity config seed failed")
			errs = append(errs, err)
		}
	}

	for i, t := range DefaultRouteTemplates() {
		if err := c.Store.UpsertRouteConfig(ctx, t, i); err != nil {
			c.Logger.Error().Err(err).Str("template", t.ID).Msg("route config seed failed")
			errs = append(errs, err)
		}
	}

	c.Cache.Invalidate(ctx, routeTemplatesCacheKey)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	c.Logger.Info().Msg("routing configurations initialized")
	return nil
}

func normalizeLevel(severity string) models.Severity {
	normalized := strings.ToLower(strings.TrimSpace(severity))
	if normalized == "" {
		return models.SeverityMedium
	}
	return models.Severity(strings.ToUpper(normalized[:1]) + normalized[1:])
}
