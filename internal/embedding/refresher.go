package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/store"
)

const defaultBatchSize = 50

// Refresher backfills missing embedding rows so match percentages stay
// available for every profile/posting pair. Runs are idempotent; a profile
// or posting that already has a vector is skipped at the query level.
type Refresher struct {
	store     *store.Store
	embedder  Embedder
	log       *zap.Logger
	batchSize int
}

func NewRefresher(st *store.Store, emb Embedder, log *zap.Logger) *Refresher {
	return &Refresher{
		store:     st,
		embedder:  emb,
		log:       log,
		batchSize: defaultBatchSize,
	}
}

// RefreshAll embeds every profile and job posting that has no stored
// vector. Individual failures are logged and skipped so one bad row cannot
// starve the rest of the batch; the retry is simply the next run.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	if err := r.refreshProfiles(ctx); err != nil {
		return err
	}
	return r.refreshJobs(ctx)
}

func (r *Refresher) refreshProfiles(ctx context.Context) error {
	for {
		ids, err := r.store.ProfileIDsMissingEmbedding(ctx, r.batchSize)
		if err != nil {
			return fmt.Errorf("listing profiles missing embeddings: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		embedded := 0
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.RefreshProfile(ctx, id); err != nil {
				r.log.Warn("profile embedding failed", zap.String("user_id", id), zap.Error(err))
				continue
			}
			embedded++
		}
		r.log.Info("profile embeddings refreshed", zap.Int("embedded", embedded), zap.Int("batch", len(ids)))

		// Failed rows stay missing; if nothing in this batch succeeded,
		// a retry now would just spin on the same rows.
		if embedded == 0 {
			return nil
		}
	}
}

func (r *Refresher) refreshJobs(ctx context.Context) error {
	for {
		ids, err := r.store.JobIDsMissingEmbedding(ctx, r.batchSize)
		if err != nil {
			return fmt.Errorf("listing jobs missing embeddings: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		embedded := 0
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.RefreshJob(ctx, id); err != nil {
				r.log.Warn("job embedding failed", zap.String("job_id", id), zap.Error(err))
				continue
			}
			embedded++
		}
		r.log.Info("job embeddings refreshed", zap.Int("embedded", embedded), zap.Int("batch", len(ids)))

		if embedded == 0 {
			return nil
		}
	}
}

// RefreshProfile re-embeds a single user profile, overwriting any stored
// vector. Called in bulk by RefreshAll and individually when a profile
// update event arrives.
func (r *Refresher) RefreshProfile(ctx context.Context, userID string) error {
	profile, err := r.store.GetUserProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading profile %s: %w", userID, err)
	}
	education, err := r.store.UserEducation(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading education for %s: %w", userID, err)
	}
	experience, err := r.store.UserExperience(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading experience for %s: %w", userID, err)
	}

	vec, err := r.embedder.Embed(ctx, ProfileText(profile, education, experience))
	if err != nil {
		return fmt.Errorf("embedding profile %s: %w", userID, err)
	}
	return r.store.UpsertUserProfileEmbedding(ctx, userID, vec)
}

// RefreshJob re-embeds a single job posting.
func (r *Refresher) RefreshJob(ctx context.Context, jobID string) error {
	job, err := r.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("loading job %s: %w", jobID, err)
	}

	vec, err := r.embedder.Embed(ctx, JobText(job.Title, job.Description))
	if err != nil {
		return fmt.Errorf("embedding job %s: %w", jobID, err)
	}
	return r.store.UpsertJobPostingEmbedding(ctx, jobID, vec)
}
