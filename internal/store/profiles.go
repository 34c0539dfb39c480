package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TomZ28/matcha/internal/model"
)

// GetUserProfile returns one job-seeker profile, or ErrNotFound.
func (s *Store) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, location, summary, avatar_url, skills
		 FROM userprofiles WHERE id = $1`,
		userID,
	)
	u, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get userprofile: %w", err)
	}
	return u, nil
}

// UserEducation returns the user's education entries.
func (s *Store) UserEducation(ctx context.Context, userID string) ([]model.Education, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, userid, school, degree, location, gpa, description,
		        start_date::text, end_date::text
		 FROM usereducations WHERE userid = $1
		 ORDER BY start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query usereducations: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Education, 0)
	for rows.Next() {
		var e model.Education
		if err := rows.Scan(&e.ID, &e.UserID, &e.School, &e.Degree, &e.Location,
			&e.GPA, &e.Description, &e.StartDate, &e.EndDate); err != nil {
			return nil, fmt.Errorf("scan education: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UserExperience returns the user's work experience entries.
func (s *Store) UserExperience(ctx context.Context, userID string) ([]model.Experience, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, userid, company, location, description,
		        start_date::text, end_date::text
		 FROM userexperiences WHERE userid = $1
		 ORDER BY start_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query userexperiences: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Experience, 0)
	for rows.Next() {
		var e model.Experience
		if err := rows.Scan(&e.ID, &e.UserID, &e.Company, &e.Location,
			&e.Description, &e.StartDate, &e.EndDate); err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// scanProfile coerces a userprofiles row. Every column except id is
// nullable; the completion scorer depends on absent fields arriving as
// empty strings, not errors.
func scanProfile(r rowScanner) (*model.UserProfile, error) {
	var (
		u            model.UserProfile
		email, first *string
		last, loc    *string
		summary, ava *string
	)
	if err := r.Scan(&u.ID, &email, &first, &last, &loc, &summary, &ava, &u.Skills); err != nil {
		return nil, err
	}
	u.Email = text(email)
	u.FirstName = text(first)
	u.LastName = text(last)
	u.Location = text(loc)
	u.Summary = text(summary)
	u.AvatarURL = text(ava)
	return &u, nil
}
