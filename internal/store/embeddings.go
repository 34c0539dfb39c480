package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// UpsertUserProfileEmbedding writes the Gemini embedding vector for a
// profile. The column name pins the producing model so a model change is
// a schema change, never a silent mix of vector spaces.
func (s *Store) UpsertUserProfileEmbedding(ctx context.Context, userID string, vec []float32) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO userprofileembeddings (id, embedding_gemini_te004)
		 VALUES ($1, $2::vector)
		 ON CONFLICT (id) DO UPDATE SET embedding_gemini_te004 = EXCLUDED.embedding_gemini_te004`,
		userID, vectorLiteral(vec),
	)
	if err != nil {
		return fmt.Errorf("upsert userprofileembeddings: %w", err)
	}
	return nil
}

// UpsertJobPostingEmbedding writes the embedding vector for a job posting.
func (s *Store) UpsertJobPostingEmbedding(ctx context.Context, jobID string, vec []float32) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobpostingembeddings (id, embedding_gemini_te004)
		 VALUES ($1, $2::vector)
		 ON CONFLICT (id) DO UPDATE SET embedding_gemini_te004 = EXCLUDED.embedding_gemini_te004`,
		jobID, vectorLiteral(vec),
	)
	if err != nil {
		return fmt.Errorf("upsert jobpostingembeddings: %w", err)
	}
	return nil
}

// ProfileIDsMissingEmbedding returns profiles that have no embedding row
// yet, capped at limit. Embeddings are normally written at profile save
// time; this backs the catch-up sweep.
func (s *Store) ProfileIDsMissingEmbedding(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id
		 FROM userprofiles u
		 LEFT JOIN userprofileembeddings e ON e.id = u.id
		 WHERE e.id IS NULL
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query profiles missing embedding: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// JobIDsMissingEmbedding returns job postings that have no embedding row
// yet, capped at limit.
func (s *Store) JobIDsMissingEmbedding(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT j.id
		 FROM jobpostings j
		 LEFT JOIN jobpostingembeddings e ON e.id = j.id
		 WHERE e.id IS NULL
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query jobs missing embedding: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

type idRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanIDs(rows idRows) ([]string, error) {
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// vectorLiteral renders a float32 slice in pgvector's input format.
func vectorLiteral(vec []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
