package score_test

import (
	"testing"

	"github.com/TomZ28/matcha/internal/model"
	"github.com/TomZ28/matcha/internal/score"
)

func fullProfile() *model.UserProfile {
	return &model.UserProfile{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Location:  "London",
		Summary:   "Analytical engines and more.",
		AvatarURL: "https://cdn.example.com/ada.png",
		Skills:    []string{"mathematics"},
	}
}

// ── Completion ─────────────────────────────────────────────────────────────

func TestCompletion_NilProfile(t *testing.T) {
	if got := score.Completion(nil, []model.Education{{}}, []model.Experience{{}}); got != 0 {
		t.Errorf("Completion(nil, ...) = %d, want 0", got)
	}
}

func TestCompletion_EmptyProfile(t *testing.T) {
	if got := score.Completion(&model.UserProfile{}, nil, nil); got != 0 {
		t.Errorf("Completion(empty) = %d, want 0", got)
	}
}

func TestCompletion_FullProfile(t *testing.T) {
	got := score.Completion(fullProfile(), []model.Education{{School: "UCL"}}, []model.Experience{{Company: "Analytical"}})
	if got != 100 {
		t.Errorf("Completion(full) = %d, want 100", got)
	}
}

func TestCompletion_FullProfileWithoutSkills(t *testing.T) {
	p := fullProfile()
	p.Skills = nil
	// 6 base + 0 skills + 2 education + 2 experience over 12 → round(10/12*100) = 83.
	got := score.Completion(p, []model.Education{{School: "UCL"}}, []model.Experience{{Company: "Analytical"}})
	if got != 83 {
		t.Errorf("Completion(no skills) = %d, want 83", got)
	}
}

func TestCompletion_WeightedSteps(t *testing.T) {
	cases := []struct {
		name       string
		mutate     func(*model.UserProfile)
		education  []model.Education
		experience []model.Experience
		want       int
	}{
		{
			name:      "base fields only",
			mutate:    func(p *model.UserProfile) { p.Skills = nil },
			want:      50, // 6/12
			education: nil,
		},
		{
			name:   "base fields plus skills",
			mutate: func(p *model.UserProfile) {},
			want:   67, // round(8/12*100)
		},
		{
			name:       "one base field missing",
			mutate:     func(p *model.UserProfile) { p.Summary = "" },
			education:  []model.Education{{}},
			experience: []model.Experience{{}},
			want:       92, // round(11/12*100)
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := fullProfile()
			c.mutate(p)
			if got := score.Completion(p, c.education, c.experience); got != c.want {
				t.Errorf("Completion() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestCompletion_WhitespaceDoesNotCount(t *testing.T) {
	p := fullProfile()
	p.Summary = "   \t"
	p.Skills = nil
	if got := score.Completion(p, nil, nil); got != 42 { // round(5/12*100)
		t.Errorf("Completion(whitespace summary) = %d, want 42", got)
	}
}

func TestCompletion_ZeroStringCounts(t *testing.T) {
	p := fullProfile()
	p.Summary = "0"
	p.Skills = nil
	if got := score.Completion(p, nil, nil); got != 50 {
		t.Errorf("Completion(summary %q) = %d, want 50", "0", got)
	}
}

func TestCompletion_EmptySkillsSliceDoesNotCount(t *testing.T) {
	p := fullProfile()
	p.Skills = []string{}
	if got := score.Completion(p, nil, nil); got != 50 {
		t.Errorf("Completion(empty skills) = %d, want 50", got)
	}
}

func TestCompletion_OneSkillEqualsMany(t *testing.T) {
	one := fullProfile()
	one.Skills = []string{"go"}
	many := fullProfile()
	many.Skills = []string{"go", "sql", "docker", "kubernetes"}
	if score.Completion(one, nil, nil) != score.Completion(many, nil, nil) {
		t.Error("skills bonus should be all-or-nothing")
	}
}

// ── NormalizeMatch ─────────────────────────────────────────────────────────

func TestNormalizeMatch_FloorOnMissing(t *testing.T) {
	for _, raw := range []float64{0, -0.2} {
		if got := score.NormalizeMatch(raw); got != 50 {
			t.Errorf("NormalizeMatch(%v) = %d, want 50", raw, got)
		}
	}
	if got := score.NormalizeMatchPtr(nil); got != 50 {
		t.Errorf("NormalizeMatchPtr(nil) = %d, want 50", got)
	}
}

func TestNormalizeMatch_Boost(t *testing.T) {
	cases := []struct {
		raw  float64
		want int
	}{
		{0.5, 65},
		{0.1, 25},
		{0.846, 100}, // round(84.6) + 15 = 100
		{0.9, 100},   // 90 + 15 clamped
		{1.0, 100},
	}
	for _, c := range cases {
		if got := score.NormalizeMatch(c.raw); got != c.want {
			t.Errorf("NormalizeMatch(%v) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestNormalizeMatch_Monotonic(t *testing.T) {
	prev := 0
	for raw := 0.01; raw <= 1.0; raw += 0.01 {
		got := score.NormalizeMatch(raw)
		if got < prev {
			t.Fatalf("NormalizeMatch(%v) = %d < previous %d", raw, got, prev)
		}
		prev = got
	}
}
