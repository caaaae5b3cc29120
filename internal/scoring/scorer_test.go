package scoring

import (
	"reflect"
	"testing"

	"github.com/shsnge/job-application-monitor/internal/models"
	"github.com/shsnge/job-application-monitor/internal/profile"
)

func intPtr(n int) *int { return &n }

func eduPtr(e models.EducationLevel) *models.EducationLevel { return &e }

// TestScore_Breakdown tests per-criterion point allocation across
// representative candidates.
func TestScore_Breakdown(t *testing.T) {
	req := profile.Requirements{
		Position:           "Frontend Developer",
		RequiredSkills:     []string{"JavaScript", "React", "CSS", "HTML"},
		PreferredSkills:    []string{"TypeScript"},
		MinExperienceYears: 3,
		Education:          []models.EducationLevel{models.EducationBachelor, models.EducationMaster},
		Keywords:           []string{"frontend"},
	}

	tests := []struct {
		name          string
		candidate     models.CandidateProfile
		wantTotal     int
		wantPassed    bool
		wantBreakdown map[string]int
	}{
		{
			name: "Partial match rounds half up and is rejected",
			candidate: models.CandidateProfile{
				Skills:          []string{"JavaScript", "CSS"},
				ExperienceYears: intPtr(4),
				Education:       eduPtr(models.EducationBachelor),
				RawText:         "Frontend engineer with JavaScript and CSS.",
			},
			// required 2/4 -> round(1.5) = 2, preferred 0/1 -> 0,
			// experience meets minimum -> 2, education match -> 1,
			// keyword 1/1 -> 2.
			wantTotal:  7,
			wantPassed: false,
			wantBreakdown: map[string]int{
				models.CriterionRequiredSkills:  2,
				models.CriterionPreferredSkills: 0,
				models.CriterionExperience:      2,
				models.CriterionEducation:       1,
				models.CriterionKeywords:        2,
			},
		},
		{
			name: "Full match passes",
			candidate: models.CandidateProfile{
				Skills:          []string{"javascript", "react", "css", "html", "typescript"},
				ExperienceYears: intPtr(5),
				Education:       eduPtr(models.EducationMaster),
				RawText:         "Senior frontend developer.",
			},
			wantTotal:  10,
			wantPassed: true,
			wantBreakdown: map[string]int{
				models.CriterionRequiredSkills:  3,
				models.CriterionPreferredSkills: 2,
				models.CriterionExperience:      2,
				models.CriterionEducation:       1,
				models.CriterionKeywords:        2,
			},
		},
		{
			name:       "Empty candidate scores zero on everything",
			candidate:  models.CandidateProfile{},
			wantTotal:  0,
			wantPassed: false,
			wantBreakdown: map[string]int{
				models.CriterionRequiredSkills:  0,
				models.CriterionPreferredSkills: 0,
				models.CriterionExperience:      0,
				models.CriterionEducation:       0,
				models.CriterionKeywords:        0,
			},
		},
		{
			name: "Experience one year below minimum gets partial credit",
			candidate: models.CandidateProfile{
				ExperienceYears: intPtr(2),
			},
			wantTotal:  1,
			wantPassed: false,
			wantBreakdown: map[string]int{
				models.CriterionRequiredSkills:  0,
				models.CriterionPreferredSkills: 0,
				models.CriterionExperience:      1,
				models.CriterionEducation:       0,
				models.CriterionKeywords:        0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.candidate, req, DefaultLimits())

			if got.Total != tt.wantTotal {
				t.Errorf("Score() total = %d, want %d (breakdown %v)", got.Total, tt.wantTotal, got.Breakdown)
			}
			if got.Passed != tt.wantPassed {
				t.Errorf("Score() passed = %v, want %v", got.Passed, tt.wantPassed)
			}
			if !reflect.DeepEqual(got.Breakdown, tt.wantBreakdown) {
				t.Errorf("Score() breakdown = %v, want %v", got.Breakdown, tt.wantBreakdown)
			}
			if len(got.Feedback) != len(models.Criteria) {
				t.Errorf("Score() produced %d feedback lines, want %d", len(got.Feedback), len(models.Criteria))
			}
		})
	}
}

// TestScore_AbsentListsAwardFullBudget tests that empty preferred-skill and
// keyword lists are not a penalty.
func TestScore_AbsentListsAwardFullBudget(t *testing.T) {
	req := profile.Requirements{
		Position:           "Backend Developer",
		RequiredSkills:     []string{"Go"},
		MinExperienceYears: 2,
	}
	candidate := models.CandidateProfile{
		Skills:          []string{"Go"},
		ExperienceYears: intPtr(3),
	}

	got := Score(candidate, req, DefaultLimits())

	if got.Breakdown[models.CriterionPreferredSkills] != preferredSkillsPoints {
		t.Errorf("preferred skills = %d, want full budget %d",
			got.Breakdown[models.CriterionPreferredSkills], preferredSkillsPoints)
	}
	if got.Breakdown[models.CriterionKeywords] != keywordPoints {
		t.Errorf("keywords = %d, want full budget %d",
			got.Breakdown[models.CriterionKeywords], keywordPoints)
	}
	// No education constraint awards the education point too.
	if got.Breakdown[models.CriterionEducation] != educationPoints {
		t.Errorf("education = %d, want %d", got.Breakdown[models.CriterionEducation], educationPoints)
	}
	if got.Total != 10 || !got.Passed {
		t.Errorf("Score() = total %d passed %v, want 10 passed", got.Total, got.Passed)
	}
}

// TestScore_Deterministic tests that identical inputs always produce identical
// results.
func TestScore_Deterministic(t *testing.T) {
	req := profile.Requirements{
		Position:           "Data Engineer",
		RequiredSkills:     []string{"Python", "SQL", "Spark"},
		PreferredSkills:    []string{"Airflow", "Kafka"},
		MinExperienceYears: 4,
		Keywords:           []string{"pipeline", "etl"},
	}
	candidate := models.CandidateProfile{
		Skills:          []string{"Python", "SQL"},
		ExperienceYears: intPtr(4),
		RawText:         "Built ETL pipeline jobs with Python and SQL.",
	}

	first := Score(candidate, req, DefaultLimits())
	for i := 0; i < 10; i++ {
		again := Score(candidate, req, DefaultLimits())
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Score() is not deterministic: run %d gave %+v, first run gave %+v", i, again, first)
		}
	}
}

// TestScore_TotalClamped tests that the total never exceeds the configured
// maximum.
func TestScore_TotalClamped(t *testing.T) {
	req := profile.Requirements{
		Position:       "Engineer",
		RequiredSkills: []string{"Go"},
	}
	candidate := models.CandidateProfile{
		Skills:          []string{"Go"},
		ExperienceYears: intPtr(10),
	}

	got := Score(candidate, req, Limits{MaxScore: 5, PassingScore: 5})

	if got.Total > 5 {
		t.Errorf("Score() total = %d, want clamped to 5", got.Total)
	}
	if !got.Passed {
		t.Errorf("Score() passed = false, want true at the clamp boundary")
	}
}

// TestRatioPoints tests the half-up rounding of fractional criterion ratios.
func TestRatioPoints(t *testing.T) {
	tests := []struct {
		name    string
		matched int
		total   int
		budget  int
		want    int
	}{
		{name: "Exact half rounds up", matched: 1, total: 2, budget: 3, want: 2},
		{name: "Below half rounds down", matched: 1, total: 3, budget: 2, want: 1},
		{name: "Zero matched", matched: 0, total: 4, budget: 3, want: 0},
		{name: "All matched", matched: 4, total: 4, budget: 3, want: 3},
		{name: "Empty requirement gets full budget", matched: 0, total: 0, budget: 2, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ratioPoints(tt.matched, tt.total, tt.budget); got != tt.want {
				t.Errorf("ratioPoints(%d, %d, %d) = %d, want %d",
					tt.matched, tt.total, tt.budget, got, tt.want)
			}
		})
	}
}
