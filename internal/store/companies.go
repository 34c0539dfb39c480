package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TomZ28/matcha/internal/feed"
	"github.com/TomZ28/matcha/internal/model"
)

// PaginatedCompanies returns one page of company profiles matching the
// search term, ordered by name.
func (s *Store) PaginatedCompanies(ctx context.Context, p feed.Params) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, company_name, location, description, logo_url
		 FROM companyprofiles
		 WHERE company_name ILIKE '%' || $1 || '%'
		    OR location     ILIKE '%' || $1 || '%'
		    OR description  ILIKE '%' || $1 || '%'
		 ORDER BY company_name ASC
		 OFFSET $2 LIMIT $3`,
		p.Query, pageStart(p.Page, p.PageSize), p.PageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("query companyprofiles: %w", err)
	}
	defer rows.Close()

	companies := make([]model.Company, 0, p.PageSize)
	for rows.Next() {
		var (
			c               model.Company
			loc, desc, logo *string
		)
		if err := rows.Scan(&c.ID, &c.CompanyName, &loc, &desc, &logo); err != nil {
			return nil, fmt.Errorf("scan companyprofile: %w", err)
		}
		c.Location = text(loc)
		c.Description = text(desc)
		c.LogoURL = text(logo)
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// GetCompany returns a single company profile.
func (s *Store) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	var (
		c               model.Company
		loc, desc, logo *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_name, location, description, logo_url
		 FROM companyprofiles WHERE id = $1`,
		companyID,
	).Scan(&c.ID, &c.CompanyName, &loc, &desc, &logo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get companyprofile: %w", err)
	}
	c.Location = text(loc)
	c.Description = text(desc)
	c.LogoURL = text(logo)
	return &c, nil
}
