package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TomZ28/matcha/internal/feed"
	"github.com/TomZ28/matcha/internal/model"
	"github.com/TomZ28/matcha/internal/score"
)

// PaginatedJobs returns one page of job postings visible to userID, with
// the caller's match percent computed by the database and normalized for
// display. Search filtering and sorting happen inside the stored
// procedure.
func (s *Store) PaginatedJobs(ctx context.Context, userID string, p feed.Params) ([]model.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, location, description, posted_date::text, job_type,
		        salary_range, match_percent, companyid, company_name, logo_url
		 FROM fetch_paginated_jobs4user(
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
		return nil, fmt.Errorf("fetch_paginated_jobs4user: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0, p.PageSize)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// PaginatedJobsByCompany is PaginatedJobs narrowed to a single company's
// postings, used by the company detail view.
func (s *Store) PaginatedJobsByCompany(ctx context.Context, userID, companyID string, p feed.Params) ([]model.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, location, description, posted_date::text, job_type,
		        salary_range, match_percent, companyid, company_name, logo_url
		 FROM fetch_paginated_jobs4user(
		   user_id       => $1,
		   query         => $2,
		   sortby        => $3,
		   sortorder     => $4,
		   companyid_opt => $5,
		   page_start    => $6,
		   page_limit    => $7
		 )`,
		userID, p.Query, string(p.SortBy), string(p.SortOrder),
		companyID, pageStart(p.Page, p.PageSize), p.PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch_paginated_jobs4user (company %s): %w", companyID, err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0, p.PageSize)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetJob returns a single posting with its company joined on.
func (s *Store) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	var (
		j                       model.Job
		location, desc, jobType *string
		salary, logo, company   *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT j.id, j.title, j.location, j.description, j.posted_date::text,
		        j.job_type, j.salary_range, j.companyid, c.company_name, c.logo_url
		 FROM jobpostings j
		 JOIN companyprofiles c ON c.id = j.companyid
		 WHERE j.id = $1`,
		jobID,
	).Scan(&j.ID, &j.Title, &location, &desc, &j.PostedDate,
		&jobType, &salary, &j.Company.ID, &company, &logo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get jobposting: %w", err)
	}
	j.Location = text(location)
	j.Description = text(desc)
	j.JobType = text(jobType)
	j.SalaryRange = text(salary)
	j.Company.CompanyName = text(company)
	j.Company.LogoURL = text(logo)
	j.MatchPercent = score.MatchFloor
	return &j, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob coerces one stored-procedure row into a Job. Every column except
// id and title is nullable in practice; NULL match scores display as the
// floor value.
func scanJob(r rowScanner) (model.Job, error) {
	var (
		j                       model.Job
		location, desc, jobType *string
		salary, posted          *string
		rawMatch                *float64
		company, logo           *string
	)
	if err := r.Scan(&j.ID, &j.Title, &location, &desc, &posted,
		&jobType, &salary, &rawMatch, &j.Company.ID, &company, &logo); err != nil {
		return model.Job{}, err
	}
	j.Location = text(location)
	j.Description = text(desc)
	j.PostedDate = text(posted)
	j.JobType = text(jobType)
	j.SalaryRange = text(salary)
	j.MatchPercent = score.NormalizeMatchPtr(rawMatch)
	j.Company.CompanyName = text(company)
	j.Company.LogoURL = text(logo)
	return j, nil
}
