package routing

import "github.com/civicreach/backend/internal/models"

func multiplier(v float64) *float64 { return &v }

// DefaultRouteTemplates is the built-in template set used whenever the config
// store is empty or unreachable, and as the seed payload. Returned as a fresh
// slice so callers can never mutate shared state.
func DefaultRouteTemplates() []models.RouteTemplate {
	return []models.RouteTemplate{
		{
			ID:                 "road-pothole",
			Keywords:           []string{"road", "pothole", "traffic", "asphalt", "pavement"},
			Department:         "Municipal Roads Department",
			Contact:            "roads@civic.gov",
			ResponseSLA:        "Within 24 hours",
			Notes:              "Coordinate asphalt team and traffic police for diversions.",
			SeverityMultiplier: multiplier(1.5),
		},
		{
			ID:                 "garbage-waste",
			Keywords:           []string{"garbage", "waste", "sanitation", "litter", "dump"},
			Department:         "Sanitation Department",
			Contact:            "sanitation@civic.gov",
			ResponseSLA:        "Within 18 hours",
			Notes:              "Dispatch vacuum compactor and notify ward health officer.",
			SeverityMultiplier: multiplier(1.2),
		},
		{
			ID:                 "streetlight-electric",
			Keywords:           []string{"streetlight", "electric", "lamp", "light", "bulb"},
			Department:         "Electricity Board",
			Contact:            "electricity.board@civic.gov",
			ResponseSLA:        "Within 12 hours",
			Notes:              "Escalate to maintenance circle with feeder ID.",
			SeverityMultiplier: multiplier(1.3),
		},
		{
			ID:                 "water-sewage",
			Keywords:           []string{"water", "leak", "sewage", "drain", "pipeline"},
			Department:         "Water Supply & Sewerage Board",
			Contact:            "waterboard@civic.gov",
			ResponseSLA:        "Within 24 hours",
			Notes:              "Alert valve crew and quality lab for contamination risk.",
			SeverityMultiplier: multiplier(2),
		},
	}
}

// DefaultRoute is the catch-all applied when no template keyword matches.
func DefaultRoute() models.RouteTemplate {
	return models.RouteTemplate{
		ID:                 "default",
		Keywords:           []string{},
		Department:         "Civic Response Center",
		Contact:            "support@civic.gov",
		ResponseSLA:        "Within 48 hours",
		Notes:              "Review and dispatch to relevant department.",
		SeverityMultiplier: multiplier(1),
	}
}

// DefaultSeverityConfigs is the built-in severity table: priority 1 is
// highest, and only High severity auto-escalates.
func DefaultSeverityConfigs() []models.SeverityConfig {
	return []models.SeverityConfig{
		{Level: models.SeverityLow, Priority: 3, AutoEscalate: false, SLAMultiplier: 1},
		{Level: models.SeverityMedium, Priority: 2, AutoEscalate: false, SLAMultiplier: 1.5},
		{Level: models.SeverityHigh, Priority: 1, AutoEscalate: true, SLAMultiplier: 2},
	}
}

// DefaultSeverityConfig returns the built-in row for a level; anything
// unrecognized falls back to Medium.
func DefaultSeverityConfig(level models.Severity) models.SeverityConfig {
	for _, cfg := range DefaultSeverityConfigs() {
		if cfg.Level == level {
			return cfg
		}
	}
	return models.SeverityConfig{Level: models.SeverityMedium, Priority: 2, AutoEscalate: false, SLAMultiplier: 1.5}
}
