package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/civicreach/backend/internal/models"
	"github.com/civicreach/backend/internal/utils"
)

// MockClassifier produces deterministic analyses without an external service.
// Keyword sniffing picks a plausible category; anything unrecognized hashes
// into one of the canned profiles.
type MockClassifier struct {
	ModelVersion string
}

type mockProfile struct {
	issueType string
	severity  models.Severity
	urgency   string
	keywords  []string
}

var mockProfiles = []mockProfile{
	{"Pothole on arterial road", models.SeverityHigh, "Immediate", []string{"road", "pothole"}},
	{"Garbage pileup", models.SeverityMedium, "Within 24hrs", []string{"garbage", "waste"}},
	{"Streetlight outage", models.SeverityMedium, "Within 24hrs", []string{"streetlight", "lamp"}},
	{"Water pipeline leak", models.SeverityHigh, "Immediate", []string{"water", "leak"}},
	{"General civic nuisance", models.SeverityLow, "Routine", []string{"nuisance"}},
}

func (m MockClassifier) Classify(ctx context.Context, req Request) (Result, error) {
	description := strings.ToLower(req.Description)

	profile := mockProfiles[int(utils.HashStringToUint64(req.Description)%uint64(len(mockProfiles)))]
	for _, p := range mockProfiles {
		for _, kw := range p.keywords {
			if strings.Contains(description, kw) {
				profile = p
			}
		}
	}

	title := req.Description
	if len(title) > 60 {
		title = title[:60]
	}
	if strings.TrimSpace(title) == "" {
		title = profile.issueType
	}

	return Result{
		IssueType: profile.issueType,
		Severity:  profile.severity,
		Urgency:   profile.urgency,
		Title:     title,
		Summary:   fmt.Sprintf("%s reported by citizen (%s).", profile.issueType, m.ModelVersion),
		Keywords:  profile.keywords,
	}, nil
}
