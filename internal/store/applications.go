package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TomZ28/matcha/internal/feed"
	"github.com/TomZ28/matcha/internal/model"
	"github.com/TomZ28/matcha/internal/score"
)

// PaginatedApplicationsByUser returns one page of the user's own
// applications with job and company context joined on.
func (s *Store) PaginatedApplicationsByUser(ctx context.Context, userID string, p feed.Params) ([]model.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, application_status, application_date, match_percent,
		        jobid, title, location, description,
		        companyid, company_name, logo_url
		 FROM fetch_paginated_apps4user(
		   user_id    => $1,
		   query      => $2,
		   sortby     => $3,
		   sortorder  => $4,
		   page_start => $5,
		   page_limit => $6
		 )`,
		userID, p.Query, string(p.SortBy), string(p.SortOrder),
		pageStart(p.Page, p.PageSize), p.PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch_paginated_apps4user: %w", err)
	}
	defer rows.Close()

	apps := make([]model.Application, 0, p.PageSize)
	for rows.Next() {
		var (
			a                model.Application
			status           *string
			appliedAt        *time.Time
			rawMatch         *float64
			jobLoc, jobDesc  *string
			company, logoURL *string
		)
		if err := rows.Scan(&a.ID, &status, &appliedAt, &rawMatch,
			&a.Job.ID, &a.Job.Title, &jobLoc, &jobDesc,
			&a.Company.ID, &company, &logoURL); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		a.Status = text(status)
		if appliedAt != nil {
			a.ApplicationDate = *appliedAt
		}
		a.MatchPercent = score.NormalizeMatchPtr(rawMatch)
		a.Job.Location = text(jobLoc)
		a.Job.Description = text(jobDesc)
		a.Company.CompanyName = text(company)
		a.Company.LogoURL = text(logoURL)
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

// PaginatedApplicantsByJob returns one page of applicants for a job,
// joined with their profiles. Visibility (company membership) is enforced
// by the stored procedure's row-level rules, not here.
func (s *Store) PaginatedApplicantsByJob(ctx context.Context, jobID string, p feed.Params) ([]model.Applicant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, application_status, application_date, match_percent,
		        userid, email, first_name, last_name, location, summary,
		        skills, avatar_url
		 FROM fetch_paginated_apps4job(
		   job_id     => $1,
		   query      => $2,
		   sortby     => $3,
		   sortorder  => $4,
		   page_start => $5,
		   page_limit => $6
		 )`,
		jobID, p.Query, string(p.SortBy), string(p.SortOrder),
		pageStart(p.Page, p.PageSize), p.PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch_paginated_apps4job: %w", err)
	}
	defer rows.Close()

	applicants := make([]model.Applicant, 0, p.PageSize)
	for rows.Next() {
		var (
			appID, status *string
			appliedAt     *time.Time
			rawMatch      *float64
			ap            model.Applicant
			email, first  *string
			last, loc     *string
			summary, ava  *string
		)
		if err := rows.Scan(&appID, &status, &appliedAt, &rawMatch,
			&ap.ID, &email, &first, &last, &loc, &summary,
			&ap.Skills, &ava); err != nil {
			return nil, fmt.Errorf("scan applicant: %w", err)
		}
		ap.ApplicationID = text(appID)
		ap.ApplicationStatus = text(status)
		ap.MatchPercent = score.NormalizeMatchPtr(rawMatch)
		ap.Email = text(email)
		ap.FirstName = text(first)
		ap.LastName = text(last)
		ap.Location = text(loc)
		ap.Summary = text(summary)
		ap.AvatarURL = text(ava)
		applicants = append(applicants, ap)
	}
	return applicants, rows.Err()
}

// InsertApplication files a new application at "applied" status. Duplicate
// applications for the same (user, job) pair are rejected by the unique
// constraint and surface as a validation error.
func (s *Store) InsertApplication(ctx context.Context, userID, jobID string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobapplications (userid, jobid, application_status, application_date)
		 VALUES ($1, $2, 'applied', NOW())
		 ON CONFLICT (userid, jobid) DO NOTHING
		 RETURNING id`,
		userID, jobID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// ON CONFLICT DO NOTHING returns no row only when the pair exists.
		return "", &ValidationError{Msg: "you have already applied to this job"}
	}
	if err != nil {
		return "", fmt.Errorf("insert application: %w", err)
	}
	return id, nil
}

// ApplicationStatus returns the current status of an application along
// with the applicant and job ids, for transition validation.
func (s *Store) ApplicationStatus(ctx context.Context, appID string) (status, userID, jobID string, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT application_status, userid, jobid FROM jobapplications WHERE id = $1`,
		appID,
	).Scan(&status, &userID, &jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", "", ErrNotFound
	}
	if err != nil {
		return "", "", "", fmt.Errorf("application status: %w", err)
	}
	return status, userID, jobID, nil
}

// UpdateApplicationStatus persists a new status. Transition legality is
// the application service's concern; this only writes.
func (s *Store) UpdateApplicationStatus(ctx context.Context, appID, newStatus string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobapplications SET application_status = $1 WHERE id = $2`,
		newStatus, appID,
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsCompanyEmployee asks the database whether userID belongs to the
// company that owns jobID. The membership rules live in the
// is_company_employee stored procedure and are not reproduced here.
func (s *Store) IsCompanyEmployee(ctx context.Context, userID, jobID string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT is_company_employee($1, (SELECT companyid FROM jobpostings WHERE id = $2))`,
		userID, jobID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("is_company_employee: %w", err)
	}
	return ok, nil
}
