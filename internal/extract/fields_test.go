package extract

import (
	"testing"

	"github.com/shsnge/job-application-monitor/internal/models"
)

const sampleResume = `John Smith
Frontend Developer

Email: john.smith@example.com
Phone: +1-555-123-4567

Experienced engineer with 5 years of experience building web applications
with JavaScript, React and CSS.

Education:
Bachelor of Science in Computer Science
`

// TestRecognize_Fields tests field recognition over a representative resume.
func TestRecognize_Fields(t *testing.T) {
	r := NewRegexRecognizer([]string{"JavaScript", "React", "CSS", "Go"})

	got := r.Recognize(sampleResume)

	if got.Name != "John Smith" {
		t.Errorf("Name = %q, want %q", got.Name, "John Smith")
	}
	if got.Email != "john.smith@example.com" {
		t.Errorf("Email = %q, want %q", got.Email, "john.smith@example.com")
	}
	if got.Phone == "" {
		t.Error("Phone is empty, want a recognized number")
	}
	if got.ExperienceYears == nil || *got.ExperienceYears != 5 {
		t.Errorf("ExperienceYears = %v, want 5", got.ExperienceYears)
	}
	if got.Education == nil || *got.Education != models.EducationBachelor {
		t.Errorf("Education = %v, want bachelor", got.Education)
	}

	wantSkills := []string{"JavaScript", "React", "CSS"}
	if len(got.Skills) != len(wantSkills) {
		t.Fatalf("Skills = %v, want %v", got.Skills, wantSkills)
	}
	for i, s := range wantSkills {
		if got.Skills[i] != s {
			t.Errorf("Skills[%d] = %q, want %q", i, got.Skills[i], s)
		}
	}
}

// TestRecognize_AbsentFieldsStayUnset tests that unrecognizable fields are
// left empty instead of guessed.
func TestRecognize_AbsentFieldsStayUnset(t *testing.T) {
	r := NewRegexRecognizer([]string{"Go"})

	got := r.Recognize("some unstructured text without any of the usual markers")

	if got.Name != "" {
		t.Errorf("Name = %q, want empty", got.Name)
	}
	if got.Email != "" {
		t.Errorf("Email = %q, want empty", got.Email)
	}
	if got.ExperienceYears != nil {
		t.Errorf("ExperienceYears = %v, want nil", got.ExperienceYears)
	}
	if got.Education != nil {
		t.Errorf("Education = %v, want nil", got.Education)
	}
}

// TestRecognizeName tests the first-line name heuristic.
func TestRecognizeName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "Two capitalized words", text: "Jane Doe\nEngineer", want: "Jane Doe"},
		{name: "Three capitalized words", text: "Jane Marie Doe\n", want: "Jane Marie Doe"},
		{name: "First line is a title not a name", text: "curriculum vitae\nJane Doe", want: ""},
		{name: "First line contains digits", text: "Resume 2024\nJane Doe", want: ""},
		{name: "First line is an email", text: "jane@example.com\n", want: ""},
		{name: "Single word", text: "Jane\n", want: ""},
		{name: "Leading blank lines skipped", text: "\n\nJane Doe\n", want: "Jane Doe"},
		{name: "Empty text", text: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recognizeName(tt.text); got != tt.want {
				t.Errorf("recognizeName(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// TestRecognizeEducation tests that the highest degree mentioned wins.
func TestRecognizeEducation(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  models.EducationLevel
		found bool
	}{
		{name: "Doctorate beats bachelor", text: "PhD in CS, Bachelor of Arts", want: models.EducationDoctorate, found: true},
		{name: "Masters variant", text: "MSc Software Engineering", want: models.EducationMaster, found: true},
		{name: "Bachelor abbreviation", text: "B.Sc. Computer Science", want: models.EducationBachelor, found: true},
		{name: "No degree mention", text: "self taught programmer", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := recognizeEducation(tt.text)
			if ok != tt.found {
				t.Fatalf("recognizeEducation(%q) found = %v, want %v", tt.text, ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("recognizeEducation(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// TestRecognizeExperience tests years-of-experience parsing.
func TestRecognizeExperience(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  int
		found bool
	}{
		{name: "Plain years", text: "4 years of experience", want: 4, found: true},
		{name: "Plus suffix", text: "10+ years in backend", want: 10, found: true},
		{name: "Singular year", text: "1 year of experience", want: 1, found: true},
		{name: "No mention", text: "worked at several companies", found: false},
		{
			name:  "Experience-adjacent match beats earlier unrelated one",
			text:  "All hardware ships with 2 years warranty included. 7 years of experience with Go.",
			want:  7,
			found: true,
		},
		{
			name:  "Unrelated mention still parsed when nothing better exists",
			text:  "relocated abroad for 3 years",
			want:  3,
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := recognizeExperience(tt.text)
			if ok != tt.found {
				t.Fatalf("recognizeExperience(%q) found = %v, want %v", tt.text, ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("recognizeExperience(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
