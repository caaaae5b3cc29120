// Package scoring implements the deterministic candidate scoring engine.
// Score is a pure function of its inputs: no I/O, no randomness, no side
// effects, and it never fails: absent candidate fields degrade to the worst
// defined value for their criterion.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/shsnge/job-application-monitor/internal/models"
	"github.com/shsnge/job-application-monitor/internal/profile"
)

// Point budgets per criterion. The five budgets sum to the default max score.
const (
	requiredSkillsPoints  = 3
	preferredSkillsPoints = 2
	experiencePoints      = 2
	educationPoints       = 1
	keywordPoints         = 2
)

// Limits carries the configurable scoring bounds.
type Limits struct {
	MaxScore     int
	PassingScore int
}

// DefaultLimits returns the standard 0-10 scale with a passing score of 8.
func DefaultLimits() Limits {
	return Limits{MaxScore: 10, PassingScore: 8}
}

// Score evaluates a candidate against one requirements profile.
//
// Fractional ratios are rounded half-up per criterion before summing; the
// total is clamped to [0, MaxScore]. Empty preferred-skill and keyword lists
// award their full budget: the absence of a preference is not a penalty.
func Score(candidate models.CandidateProfile, req profile.Requirements, lim Limits) models.ScoreResult {
	breakdown := make(map[string]int, len(models.Criteria))
	feedback := make([]string, 0, len(models.Criteria))

	skillSet := lowerSet(candidate.Skills)

	// Required skills (0-3)
	matched := countMatches(req.RequiredSkills, skillSet)
	points := ratioPoints(matched, len(req.RequiredSkills), requiredSkillsPoints)
	breakdown[models.CriterionRequiredSkills] = points
	feedback = append(feedback, fmt.Sprintf("Required Skills: %d/%d matched", matched, len(req.RequiredSkills)))

	// Preferred skills (0-2)
	if len(req.PreferredSkills) == 0 {
		breakdown[models.CriterionPreferredSkills] = preferredSkillsPoints
		feedback = append(feedback, "Preferred Skills: none specified")
	} else {
		matched = countMatches(req.PreferredSkills, skillSet)
		breakdown[models.CriterionPreferredSkills] = ratioPoints(matched, len(req.PreferredSkills), preferredSkillsPoints)
		feedback = append(feedback, fmt.Sprintf("Preferred Skills: %d/%d matched", matched, len(req.PreferredSkills)))
	}

	// Experience (0-2)
	expPoints, expLine := scoreExperience(candidate.ExperienceYears, req.MinExperienceYears)
	breakdown[models.CriterionExperience] = expPoints
	feedback = append(feedback, expLine)

	// Education (0-1)
	eduPoints, eduLine := scoreEducation(candidate.Education, req)
	breakdown[models.CriterionEducation] = eduPoints
	feedback = append(feedback, eduLine)

	// Keywords (0-2)
	if len(req.Keywords) == 0 {
		breakdown[models.CriterionKeywords] = keywordPoints
		feedback = append(feedback, "Keywords: none specified")
	} else {
		matched = countKeywords(req.Keywords, candidate.RawText)
		breakdown[models.CriterionKeywords] = ratioPoints(matched, len(req.Keywords), keywordPoints)
		feedback = append(feedback, fmt.Sprintf("Keywords: %d/%d matched", matched, len(req.Keywords)))
	}

	total := 0
	for _, c := range models.Criteria {
		total += breakdown[c]
	}
	if total > lim.MaxScore {
		total = lim.MaxScore
	}
	if total < 0 {
		total = 0
	}

	return models.ScoreResult{
		Total:     total,
		Breakdown: breakdown,
		Feedback:  feedback,
		Passed:    total >= lim.PassingScore,
	}
}

// scoreExperience awards the full budget when the candidate meets the
// minimum, one point when within a year below it, and nothing when the
// estimate is missing.
func scoreExperience(years *int, minYears int) (int, string) {
	if years == nil {
		return 0, "Experience: could not be determined"
	}

	switch {
	case *years >= minYears:
		return experiencePoints, fmt.Sprintf("Experience: %d years (meets requirement)", *years)
	case *years >= minYears-1:
		return 1, fmt.Sprintf("Experience: %d years (close to requirement)", *years)
	default:
		return 0, fmt.Sprintf("Experience: %d years (below requirement)", *years)
	}
}

func scoreEducation(level *models.EducationLevel, req profile.Requirements) (int, string) {
	if len(req.Education) == 0 {
		return educationPoints, "Education: no specific requirement"
	}
	if level == nil {
		return 0, "Education: could not be determined"
	}
	if req.AcceptsEducation(*level) {
		return educationPoints, "Education: match found"
	}
	return 0, "Education: no clear match"
}

// ratioPoints converts matched/total into points on the given budget,
// rounding half-up so scoring is reproducible.
func ratioPoints(matched, total, budget int) int {
	if total <= 0 {
		return budget
	}
	ratio := float64(matched) / float64(total)
	points := int(math.Floor(ratio*float64(budget) + 0.5))
	if points > budget {
		points = budget
	}
	if points < 0 {
		points = 0
	}
	return points
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return set
}

func countMatches(wanted []string, have map[string]bool) int {
	n := 0
	for _, w := range wanted {
		if have[strings.ToLower(strings.TrimSpace(w))] {
			n++
		}
	}
	return n
}

// countKeywords counts keywords appearing as case-insensitive substrings of
// the resume text.
func countKeywords(keywords []string, text string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}
