// Package score computes the profile-completion percentage and the
// user-facing match percentage. Both functions are pure and safe to
// call concurrently.
package score

import (
	"math"
	"strings"

	"github.com/TomZ28/matcha/internal/model"
)

const (
	// MatchFloor is the percentage shown when no raw similarity score is
	// available for a row.
	MatchFloor = 50

	// MatchBoost is the flat percentage-point boost applied on top of the
	// raw similarity before clamping. Any raw score >= 0.85 displays as a
	// 100% match.
	MatchBoost = 15
)

// Completion returns the profile-completion percentage in [0, 100].
//
// Weighted-count policy, not an arithmetic mean: the six base profile
// fields are worth one point each; skills, education and experience are
// worth two points each, all-or-nothing on non-emptiness. One skill is
// worth the same as many. A nil profile scores 0.
func Completion(profile *model.UserProfile, education []model.Education, experience []model.Experience) int {
	if profile == nil {
		return 0
	}

	total := 0
	completed := 0

	base := []string{
		profile.FirstName,
		profile.LastName,
		profile.Email,
		profile.Location,
		profile.Summary,
		profile.AvatarURL,
	}
	for _, field := range base {
		total++
		if strings.TrimSpace(field) != "" {
			completed++
		}
	}

	total += 2
	if len(profile.Skills) > 0 {
		completed += 2
	}

	total += 2
	if len(education) > 0 {
		completed += 2
	}

	total += 2
	if len(experience) > 0 {
		completed += 2
	}

	return int(math.Round(float64(completed) / float64(total) * 100))
}

// NormalizeMatch converts a raw similarity score (cosine-like, typically
// in [0, 1]) into the display percentage. Missing or zero scores fall back
// to MatchFloor; everything else gets the MatchBoost and is clamped at 100.
//
// The floor and boost are product behavior; changing them is a product
// decision, not a fix.
func NormalizeMatch(raw float64) int {
	if raw <= 0 {
		return MatchFloor
	}
	pct := int(math.Round(raw*100)) + MatchBoost
	if pct > 100 {
		return 100
	}
	return pct
}

// NormalizeMatchPtr is NormalizeMatch for nullable database columns:
// a NULL match_percent behaves like an absent score.
func NormalizeMatchPtr(raw *float64) int {
	if raw == nil {
		return MatchFloor
	}
	return NormalizeMatch(*raw)
}
