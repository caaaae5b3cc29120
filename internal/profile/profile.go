// Package profile loads and validates the per-position requirements profiles
// that the scoring engine matches candidates against. Profiles are loaded once
// at startup and treated as immutable for the process lifetime.
package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shsnge/job-application-monitor/internal/models"
)

// ErrInvalidProfile indicates the profiles file failed validation. The error
// message lists every violated constraint, not just the first.
var ErrInvalidProfile = errors.New("invalid requirements profile")

// Requirements describes one job opening's scoring inputs.
type Requirements struct {
	Position           string                  `yaml:"position"`
	RequiredSkills     []string                `yaml:"required_skills"`
	PreferredSkills    []string                `yaml:"preferred_skills"`
	MinExperienceYears int                     `yaml:"min_experience_years"`
	Education          []models.EducationLevel `yaml:"education"`
	Keywords           []string                `yaml:"keywords"`
}

// AcceptsEducation reports whether the level satisfies the profile. An empty
// education list means the opening has no education constraint.
func (r Requirements) AcceptsEducation(level models.EducationLevel) bool {
	if len(r.Education) == 0 {
		return true
	}
	for _, e := range r.Education {
		if e == level {
			return true
		}
	}
	return false
}

// Set holds every configured profile. The first profile is the default used
// when no subject line matches a position.
type Set struct {
	profiles []Requirements
}

type profilesFile struct {
	Profiles []Requirements `yaml:"profiles"`
}

// Load reads and validates a profiles YAML file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}
	return Parse(data)
}

// Parse validates raw YAML profile data.
func Parse(data []byte) (*Set, error) {
	var f profilesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse YAML: %v", ErrInvalidProfile, err)
	}

	if err := validate(f.Profiles); err != nil {
		return nil, err
	}

	return &Set{profiles: f.Profiles}, nil
}

// validate collects every constraint violation before failing. This runs once
// at startup, so completeness beats speed.
func validate(profiles []Requirements) error {
	var violations []string

	if len(profiles) == 0 {
		violations = append(violations, "no profiles defined")
	}

	seen := make(map[string]bool)
	for i, p := range profiles {
		label := p.Position
		if label == "" {
			label = fmt.Sprintf("profile #%d", i+1)
			violations = append(violations, fmt.Sprintf("%s: position is required", label))
		}

		if seen[strings.ToLower(p.Position)] && p.Position != "" {
			violations = append(violations, fmt.Sprintf("%s: duplicate position", label))
		}
		seen[strings.ToLower(p.Position)] = true

		if len(p.RequiredSkills) == 0 {
			violations = append(violations, fmt.Sprintf("%s: required_skills must not be empty", label))
		}
		if p.MinExperienceYears < 0 {
			violations = append(violations, fmt.Sprintf("%s: min_experience_years must not be negative", label))
		}
		for _, e := range p.Education {
			if !e.Valid() {
				violations = append(violations, fmt.Sprintf("%s: unknown education level %q", label, e))
			}
		}
	}

	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(violations, "; "))
	}
	return nil
}

// Default returns the fallback profile used when no position matches.
func (s *Set) Default() Requirements {
	return s.profiles[0]
}

// Match returns the profile whose position appears in the subject line,
// falling back to the default profile.
func (s *Set) Match(subject string) Requirements {
	lower := strings.ToLower(subject)
	for _, p := range s.profiles {
		if p.Position != "" && strings.Contains(lower, strings.ToLower(p.Position)) {
			return p
		}
	}
	return s.Default()
}

// Positions lists the configured position titles in file order.
func (s *Set) Positions() []string {
	out := make([]string, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Position)
	}
	return out
}

// Vocabulary returns the union of required and preferred skills across all
// profiles. The extractor uses it to detect skill mentions in resume text.
func (s *Set) Vocabulary() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.profiles {
		for _, skill := range append(append([]string{}, p.RequiredSkills...), p.PreferredSkills...) {
			key := strings.ToLower(strings.TrimSpace(skill))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, skill)
		}
	}
	return out
}
