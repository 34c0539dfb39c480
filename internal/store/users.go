package store

import (
	"context"
	"fmt"

	"github.com/TomZ28/matcha/internal/feed"
	"github.com/TomZ28/matcha/internal/model"
	"github.com/TomZ28/matcha/internal/score"
)

// PaginatedUsers returns one page of job-seeker profiles matching the
// search term. The people directory always orders by first name; the sort
// params in p are accepted but not applied.
func (s *Store) PaginatedUsers(ctx context.Context, p feed.Params) ([]model.UserProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, first_name, last_name, location, summary, avatar_url, skills
		 FROM userprofiles
		 WHERE first_name ILIKE '%' || $1 || '%'
		    OR last_name  ILIKE '%' || $1 || '%'
		    OR summary    ILIKE '%' || $1 || '%'
		    OR location   ILIKE '%' || $1 || '%'
		 ORDER BY first_name ASC
		 OFFSET $2 LIMIT $3`,
		p.Query, pageStart(p.Page, p.PageSize), p.PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("query userprofiles: %w", err)
	}
	defer rows.Close()

	users := make([]model.UserProfile, 0, p.PageSize)
	for rows.Next() {
		u, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan userprofile: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// PaginatedSuggestedUsersByJob returns one page of AI-suggested candidates
// for a job, best match first. The nearest-neighbor search over profile
// embeddings happens inside the stored procedure.
func (s *Store) PaginatedSuggestedUsersByJob(ctx context.Context, jobID string, p feed.Params) ([]model.Applicant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, first_name, last_name, location, summary, skills,
		        avatar_url, match_percent, applicationid, application_status
		 FROM fetch_paginated_users4job(
		   job_id     => $1,
		   page_start => $2,
		   page_limit => $3
		 )`,
		jobID, pageStart(p.Page, p.PageSize), p.PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch_paginated_users4job: %w", err)
	}
	defer rows.Close()

	candidates := make([]model.Applicant, 0, p.PageSize)
	for rows.Next() {
		var (
			c             model.Applicant
			email, first  *string
			last, loc     *string
			summary, ava  *string
			rawMatch      *float64
			appID, status *string
		)
		if err := rows.Scan(&c.ID, &email, &first, &last, &loc, &summary,
			&c.Skills, &ava, &rawMatch, &appID, &status); err != nil {
			return nil, fmt.Errorf("scan suggested user: %w", err)
		}
		c.Email = text(email)
		c.FirstName = text(first)
		c.LastName = text(last)
		c.Location = text(loc)
		c.Summary = text(summary)
		c.AvatarURL = text(ava)
		c.MatchPercent = score.NormalizeMatchPtr(rawMatch)
		c.ApplicationID = text(appID)
		c.ApplicationStatus = text(status)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
