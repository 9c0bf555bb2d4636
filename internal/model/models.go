// Package model defines the shared domain types of the catalog service.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RemoteType classifies where a job is performed.
type RemoteType string

const (
	RemoteTypeRemote  RemoteType = "remote"
	RemoteTypeHybrid  RemoteType = "hybrid"
	RemoteTypeOnsite  RemoteType = "onsite"
	RemoteTypeUnknown RemoteType = "unknown"
)

// RawListing is an offer as one external job board reports it, before
// normalization. Adapters fill whatever fields the source exposes.
type RawListing struct {
	ExternalID       string   `json:"externalId"`
	Source           string   `json:"source"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	JobType          string   `json:"jobType,omitempty"`
	SalaryText       string   `json:"salaryText,omitempty"`
	SalaryMin        *int     `json:"salaryMin,omitempty"`
	SalaryMax        *int     `json:"salaryMax,omitempty"`
	Description      string   `json:"description"`
	Requirements     []string `json:"requirements,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Benefits         []string `json:"benefits,omitempty"`
	PostedAt         string   `json:"postedAt,omitempty"`
	ApplyURL         string   `json:"applyUrl,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	ExperienceLevel  string   `json:"experienceLevel,omitempty"`
	Remote           bool     `json:"remote,omitempty"`
}

// Job is the canonical listing stored in the catalog.
// (Source, ExternalID) is unique; ID is assigned by the store on first insert.
type Job struct {
	ID               uuid.UUID  `json:"id"`
	ExternalID       string     `json:"externalId"`
	Source           string     `json:"source"`
	Title            string     `json:"title"`
	Company          string     `json:"company"`
	Location         string     `json:"location"`
	RemoteType       RemoteType `json:"remoteType"`
	JobType          string     `json:"jobType,omitempty"`
	SalaryMin        *int       `json:"salaryMin,omitempty"`
	SalaryMax        *int       `json:"salaryMax,omitempty"`
	Description      string     `json:"description"`
	Requirements     []string   `json:"requirements,omitempty"`
	Responsibilities []string   `json:"responsibilities,omitempty"`
	Benefits         []string   `json:"benefits,omitempty"`
	PostedDate       time.Time  `json:"postedDate"`
	ApplyURL         string     `json:"applyUrl,omitempty"`
	Industry         string     `json:"industry,omitempty"`
	ExperienceLevel  string     `json:"experienceLevel,omitempty"`
	Canonical        bool       `json:"canonical"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// DedupKey groups candidate duplicates seen from different sources.
// It assumes Title, Company and Location are already normalized.
func (j *Job) DedupKey() string {
	return strings.ToLower(j.Title) + "|" + strings.ToLower(j.Company) + "|" + strings.ToLower(j.Location)
}

// Completeness counts populated optional fields. Used as the dedup winner
// criterion: richer records beat sparser ones.
func (j *Job) Completeness() int {
	n := 0
	if j.JobType != "" {
		n++
	}
	if j.SalaryMin != nil {
		n++
	}
	if j.SalaryMax != nil {
		n++
	}
	if j.Description != "" {
		n++
	}
	if len(j.Requirements) > 0 {
		n++
	}
	if len(j.Responsibilities) > 0 {
		n++
	}
	if len(j.Benefits) > 0 {
		n++
	}
	if j.ApplyURL != "" {
		n++
	}
	if j.Industry != "" {
		n++
	}
	if j.ExperienceLevel != "" {
		n++
	}
	if j.RemoteType != RemoteTypeUnknown && j.RemoteType != "" {
		n++
	}
	return n
}

// SearchResult is one page of catalog search output.
type SearchResult struct {
	Jobs       []Job `json:"jobs"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// MatchBreakdown holds the five factor scores, each in [0,100].
type MatchBreakdown struct {
	Skill      float64 `json:"skillScore"`
	Experience float64 `json:"experienceScore"`
	Location   float64 `json:"locationScore"`
	Salary     float64 `json:"salaryScore"`
	Culture    float64 `json:"cultureScore"`
}

// MatchScore is the multi-factor relevance of one job for one profile.
// Overall = round(.35·skill + .25·experience + .15·location + .10·salary + .15·culture).
type MatchScore struct {
	JobID          uuid.UUID      `json:"jobId"`
	ProfileID      string         `json:"profileId"`
	Overall        int            `json:"overallScore"`
	Breakdown      MatchBreakdown `json:"breakdown"`
	MatchingSkills []string       `json:"matchingSkills"`
	MissingSkills  []string       `json:"missingSkills"`
}

// SkillLevel is one declared profile skill with years of practice.
type SkillLevel struct {
	Name  string `json:"name"`
	Years int    `json:"years"`
}

// Profile is the user-profile object consumed from the external profile
// provider. The catalog never mutates it.
type Profile struct {
	ID                 string       `json:"id"`
	Skills             []SkillLevel `json:"skills"`
	TotalYears         int          `json:"totalYears"`
	PreferredLocations []string     `json:"preferredLocations,omitempty"`
	AcceptsRemote      bool         `json:"acceptsRemote"`
	MinSalary          *int         `json:"minSalary,omitempty"`
	Industries         []string     `json:"industries,omitempty"`
	CareerGoal         string       `json:"careerGoal,omitempty"`
}
