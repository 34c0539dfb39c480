// Package model defines the record schemas shared across the match service.
//
// Rows come back from PostgreSQL (tables and stored procedures) loosely
// typed; the store package coerces them into these explicit shapes at the
// boundary so the rest of the service never deals with raw rows.
package model

import "time"

// UserProfile mirrors a userprofiles row. All base fields are optional at
// the database level; emptiness matters for completion scoring.
type UserProfile struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Location  string   `json:"location"`
	Summary   string   `json:"summary"`
	AvatarURL string   `json:"avatar_url"`
	Skills    []string `json:"skills"`
}

// Education mirrors a usereducations row. Only existence is significant for
// completion scoring; content feeds the profile embedding text.
type Education struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userid"`
	School      string  `json:"school"`
	Degree      *string `json:"degree"`
	Location    *string `json:"location"`
	GPA         *string `json:"gpa"`
	Description *string `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// Experience mirrors a userexperiences row.
type Experience struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userid"`
	Company     string  `json:"company"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// Company mirrors a companyprofiles row.
type Company struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
}

// CompanyRef is the embedded company summary attached to job and
// application rows.
type CompanyRef struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	LogoURL     string `json:"logo_url"`
}

// Job is a jobpostings row joined with its company and, when fetched
// through fetch_paginated_jobs4user, the caller's normalized match percent.
type Job struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Location     string     `json:"location"`
	Description  string     `json:"description"`
	JobType      string     `json:"job_type"`
	SalaryRange  string     `json:"salary_range,omitempty"`
	PostedDate   string     `json:"posted_date"`
	MatchPercent int        `json:"match_percent"`
	Company      CompanyRef `json:"company"`
}

// JobRef is the embedded job summary attached to application rows.
type JobRef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Application is a jobapplications row as returned by the paginated
// stored procedures, joined with job and company context.
type Application struct {
	ID              string     `json:"id"`
	Status          string     `json:"application_status"`
	ApplicationDate time.Time  `json:"application_date"`
	MatchPercent    int        `json:"match_percent"`
	Job             JobRef     `json:"job"`
	Company         CompanyRef `json:"company"`
}

// Applicant is a userprofiles row joined onto an application when a
// company reviews who applied, or onto a suggested-candidate row.
type Applicant struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Location     string   `json:"location"`
	Summary      string   `json:"summary"`
	Skills       []string `json:"skills"`
	AvatarURL    string   `json:"avatar_url"`
	MatchPercent int      `json:"match_percent"`
	// Set when the candidate already applied to the job in question.
	ApplicationID     string `json:"applicationid,omitempty"`
	ApplicationStatus string `json:"application_status,omitempty"`
}
