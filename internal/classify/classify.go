package classify

import (
	"context"

	"github.com/civicreach/backend/internal/models"
)

// Request carries the raw complaint material to classify. Image is an
// optional data URL; Location is forwarded so a classifier can use it for
// context but jurisdiction derivation happens in routing.
type Request struct {
	Description string              `json:"description"`
	Image       string              `json:"image,omitempty"`
	Location    *models.Coordinates `json:"location,omitempty"`
}

// Result is the structured issue analysis produced by the external
// classification capability.
type Result struct {
	IssueType string          `json:"issueType"`
	Severity  models.Severity `json:"severity"`
	Urgency   string          `json:"urgency"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary"`
	Keywords  []string        `json:"keywords"`
}

type Classifier interface {
	Classify(ctx context.Context, req Request) (Result, error)
}
