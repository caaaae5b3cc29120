package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shsnge/job-application-monitor/internal/models"
)

var (
	emailRe     = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe     = regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	longDigitRe = regexp.MustCompile(`\+?\d{10,15}`)
	yearsRe     = regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*years?`)
)

// degreeKeywords maps degree-name mentions to education levels. Checked from
// the highest level down so the best degree wins.
var degreeKeywords = []struct {
	level    models.EducationLevel
	keywords []string
}{
	{models.EducationDoctorate, []string{"ph.d", "phd", "doctorate", "doctoral"}},
	{models.EducationMaster, []string{"master of", "master's", "masters", "msc", "m.sc", "mba"}},
	{models.EducationBachelor, []string{"bachelor", "bsc", "b.sc", "b.s.", "beng", "b.eng"}},
	{models.EducationAssociate, []string{"associate degree", "associate's", "associate of"}},
}

// RegexRecognizer recognizes candidate fields with pattern matching over the
// extracted text. Skill detection matches a known vocabulary, normally the
// union of skills across the configured requirement profiles.
type RegexRecognizer struct {
	vocabulary []string
}

// NewRegexRecognizer builds a recognizer with the given skill vocabulary.
func NewRegexRecognizer(vocabulary []string) *RegexRecognizer {
	return &RegexRecognizer{vocabulary: vocabulary}
}

// Recognize extracts whatever fields the text yields. Unrecognizable fields
// stay unset; nothing is ever guessed.
func (r *RegexRecognizer) Recognize(text string) models.CandidateProfile {
	profile := models.CandidateProfile{
		Name:   recognizeName(text),
		Email:  emailRe.FindString(text),
		Phone:  recognizePhone(text),
		Skills: r.recognizeSkills(text),
	}

	if years, ok := recognizeExperience(text); ok {
		profile.ExperienceYears = &years
	}
	if level, ok := recognizeEducation(text); ok {
		profile.Education = &level
	}

	return profile
}

func (r *RegexRecognizer) recognizeSkills(text string) []string {
	lower := strings.ToLower(text)
	var skills []string
	for _, skill := range r.vocabulary {
		if skill == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(skill)) {
			skills = append(skills, skill)
		}
	}
	return skills
}

func recognizePhone(text string) string {
	if m := phoneRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return longDigitRe.FindString(text)
}

// recognizeExperience parses "N years" mentions. A match next to an
// experience keyword wins over earlier unrelated ones ("2 years warranty"),
// falling back to the first match when no keyword is nearby.
func recognizeExperience(text string) (int, bool) {
	matches := yearsRe.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return 0, false
	}

	lower := strings.ToLower(text)
	for _, m := range matches {
		if nearExperienceWord(lower, m[0], m[1]) {
			if years, err := strconv.Atoi(text[m[2]:m[3]]); err == nil {
				return years, true
			}
		}
	}

	years, err := strconv.Atoi(text[matches[0][2]:matches[0][3]])
	if err != nil {
		return 0, false
	}
	return years, true
}

// nearExperienceWord checks a short window around the match for an
// experience keyword.
func nearExperienceWord(lower string, start, end int) bool {
	from := start - 15
	if from < 0 {
		from = 0
	}
	to := end + 15
	if to > len(lower) {
		to = len(lower)
	}
	window := lower[from:to]
	return strings.Contains(window, "experience") || strings.Contains(window, "exp")
}

func recognizeEducation(text string) (models.EducationLevel, bool) {
	lower := strings.ToLower(text)
	for _, entry := range degreeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.level, true
			}
		}
	}
	return "", false
}

// recognizeName takes the first line of the resume when it plausibly looks
// like a person's name: two to four capitalized words, no digits. Anything
// less certain stays absent; the monitor falls back to the sender name.
func recognizeName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if looksLikeName(line) {
			return line
		}
		return ""
	}
	return ""
}

func looksLikeName(line string) bool {
	if len(line) > 60 || strings.ContainsAny(line, "@0123456789:;/\\") {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		runes := []rune(w)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
	}
	return true
}
