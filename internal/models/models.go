package models

import "time"

// EducationLevel is the highest academic level detected in a resume.
type EducationLevel string

const (
	EducationNone      EducationLevel = "none"
	EducationAssociate EducationLevel = "associate"
	EducationBachelor  EducationLevel = "bachelor"
	EducationMaster    EducationLevel = "master"
	EducationDoctorate EducationLevel = "doctorate"
)

var educationRank = map[EducationLevel]int{
	EducationNone:      0,
	EducationAssociate: 1,
	EducationBachelor:  2,
	EducationMaster:    3,
	EducationDoctorate: 4,
}

// Rank returns the ordinal position of the level, 0 for unknown values.
func (e EducationLevel) Rank() int {
	return educationRank[e]
}

// Valid reports whether the level is one of the known enum values.
func (e EducationLevel) Valid() bool {
	_, ok := educationRank[e]
	return ok
}

// CandidateProfile holds the structured fields parsed from one resume.
// Name, Email and Phone may be empty and ExperienceYears/Education may be nil
// when recognition fails; scoring tolerates every missing field.
// A profile is never mutated after the extractor returns it.
type CandidateProfile struct {
	Name            string          `json:"name,omitempty"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	RawText         string          `json:"raw_text,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	ExperienceYears *int            `json:"experience_years,omitempty"`
	Education       *EducationLevel `json:"education,omitempty"`
}

// Criterion names used as breakdown keys and spreadsheet columns.
const (
	CriterionRequiredSkills  = "required_skills"
	CriterionPreferredSkills = "preferred_skills"
	CriterionExperience      = "experience"
	CriterionEducation       = "education"
	CriterionKeywords        = "keywords"
)

// Criteria lists the breakdown keys in their reporting order.
var Criteria = []string{
	CriterionRequiredSkills,
	CriterionPreferredSkills,
	CriterionExperience,
	CriterionEducation,
	CriterionKeywords,
}

// ScoreResult is the scoring engine output for one candidate.
type ScoreResult struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
	Feedback  []string       `json:"feedback"`
	Passed    bool           `json:"passed"`
}

// Status is the review outcome recorded for an application.
type Status string

const (
	StatusPassed        Status = "Passed"
	StatusRejected      Status = "Rejected"
	StatusPendingReview Status = "Pending review"
)

// ApplicationRecord is one row in the application store. Records are
// append-only: created exactly once per message ID, never mutated or deleted.
type ApplicationRecord struct {
	Timestamp time.Time   `json:"timestamp"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Position  string      `json:"position"`
	Subject   string      `json:"subject,omitempty"`
	Score     ScoreResult `json:"score"`
	Status    Status      `json:"status"`
	ResumeRef string      `json:"resume_ref,omitempty"`
	MessageID string      `json:"message_id"`
}
