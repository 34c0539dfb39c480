package embedding

import (
	"fmt"
	"strings"

	"github.com/TomZ28/matcha/internal/model"
)

// JobText assembles the embedding input for a job posting. Title and
// description are the only fields that carry matching signal; location and
// salary would only add noise to the vector.
func JobText(title, description string) string {
	return fmt.Sprintf("Title: %s\nDescription: %s", title, description)
}

// ProfileText assembles the embedding input for a job seeker: summary,
// skills, and sentence-form education and experience history. Keep the
// sentence phrasing stable: rewording it changes the vectors new profiles
// get, skewing their match scores against everything embedded before the
// change until the older rows are re-embedded.
func ProfileText(profile *model.UserProfile, education []model.Education, experience []model.Experience) string {
	var summary, skills string
	if profile != nil {
		summary = profile.Summary
		skills = strings.Join(profile.Skills, ",")
	}

	eduParts := make([]string, 0, len(education))
	for _, e := range education {
		eduParts = append(eduParts, fmt.Sprintf("Went to %s with degree in %s and a gpa of %s. %s.",
			e.School, deref(e.Degree), deref(e.GPA), deref(e.Description)))
	}

	expParts := make([]string, 0, len(experience))
	for _, e := range experience {
		expParts = append(expParts, fmt.Sprintf("Worked at %s. %s.",
			e.Company, deref(e.Description)))
	}

	return fmt.Sprintf("Description: %s\nSkills: %s\nEducation: %s\nExperience: %s",
		summary, skills, strings.Join(eduParts, ","), strings.Join(expParts, ","))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
