package routing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/civicreach/backend/internal/models"
)

// DeriveJurisdiction buckets coordinates into a zone. The thresholds are
// tested in a fixed order: latitude decides North/South before longitude is
// looked at, so a point like lat=12.95,lng=77.60 falls through to Central.
func DeriveJurisdiction(coords *models.Coordinates) string {
	if coords == nil {
		return "Citywide"
	}
	switch {
	case coords.Lat >= 13.0:
		return "North Zone"
	case coords.Lat <= 12.9:
		return "South Zone"
	case coords.Lng >= 77.65:
		return "East Zone"
	case coords.Lng <= 77.55:
		return "West Zone"
	default:
		return "Central Zone"
	}
}

// MatchTemplate scans templates in list order and returns the first one with
// any keyword appearing as a case-insensitive substring of the issue type.
// No match returns the default route. A linear scan over the ordered slice is
// load-bearing here: overlapping keyword sets resolve by configured order.
func MatchTemplate(templates []models.RouteTemplate, issueType string) models.RouteTemplate {
	normalized := strings.ToLower(issueType)
	for _, t := range templates {
		for _, kw := range t.Keywords {
			if kw != "" && strings.Contains(normalized, strings.ToLower(kw)) {
				return t
			}
		}
	}
	return DefaultRoute()
}

var slaPattern = regexp.MustCompile(`(?i)(\d+)\s+(hours?|days?)`)

// AdjustSLA divides the SLA amount by the severity multiplier, rounding up,
// and re-renders it as "Within <n> <unit>". Strings without a parseable
// amount pass through unchanged.
func AdjustSLA(baseSLA string, cfg models.SeverityConfig) string {
	m := slaPattern.FindStringSubmatch(baseSLA)
	if m == nil || cfg.SLAMultiplier <= 0 {
		return baseSLA
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return baseSLA
	}
	adjusted := int(math.Ceil(float64(amount) / cfg.SLAMultiplier))

	unit := "days"
	if strings.HasPrefix(strings.ToLower(m[2]), "hour") {
		unit = "hours"
	}
	return fmt.Sprintf("Within %d %s", adjusted, unit)
}

// Resolve computes the full routing decision from a configuration snapshot.
// Pure and deterministic: same inputs, same decision.
func Resolve(templates []models.RouteTemplate, sevCfg models.SeverityConfig, issueType string, severity models.Severity, coords *models.Coordinates) models.IssueRouting {
	template := MatchTemplate(templates, issueType)
	jurisdiction := DeriveJurisdiction(coords)

	return models.IssueRouting{
		Department:   template.Department,
		Contact:      template.Contact,
		ResponseSLA:  AdjustSLA(template.ResponseSLA, sevCfg),
		Jurisdiction: jurisdiction,
		Notes:        fmt.Sprintf("%s Jurisdiction: %s. Priority Level: %s.", template.Notes, jurisdiction, severity),
		Priority:     sevCfg.Priority,
		Escalated:    sevCfg.AutoEscalate,
	}
}
