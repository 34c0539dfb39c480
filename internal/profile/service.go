// Package profile serves completion scoring and the cached
// profile-complete flag used to gate job applications.
package profile

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/score"
	"github.com/TomZ28/matcha/internal/store"
)

// EventChannel carries profile update notifications. The payload is the
// user id of the changed profile.
const EventChannel = "EVENT_PROFILE_UPDATED"

const completeKeyPrefix = "matcha:profile_complete:"

type Service struct {
	store *store.Store
	rdb   *redis.Client
	log   *zap.Logger
}

func NewService(st *store.Store, rdb *redis.Client, log *zap.Logger) *Service {
	return &Service{store: st, rdb: rdb, log: log}
}

// Completion computes the weighted completion percentage for a profile.
func (s *Service) Completion(ctx context.Context, userID string) (int, error) {
	profile, err := s.store.GetUserProfile(ctx, userID)
	if err != nil {
		return 0, err
	}
	education, err := s.store.UserEducation(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading education for %s: %w", userID, err)
	}
	experience, err := s.store.UserExperience(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("loading experience for %s: %w", userID, err)
	}
	return score.Completion(profile, education, experience), nil
}

// IsComplete reports whether the profile has both a first and last name,
// the minimum bar for applying to jobs. The answer is cached in Redis and
// invalidated by the profile update listener, so most calls never hit
// Postgres.
func (s *Service) IsComplete(ctx context.Context, userID string) (bool, error) {
	key := completeKeyPrefix + userID

	cached, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		return cached == "1", nil
	}
	if err != redis.Nil {
		s.log.Warn("profile complete cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	profile, err := s.store.GetUserProfile(ctx, userID)
	if err != nil {
		return false, err
	}
	complete := profile.FirstName != "" && profile.LastName != ""

	val := "0"
	if complete {
		val = "1"
	}
	if err := s.rdb.Set(ctx, key, val, 0).Err(); err != nil {
		s.log.Warn("profile complete cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return complete, nil
}

// Invalidate drops the cached complete flag for a user.
func (s *Service) Invalidate(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, completeKeyPrefix+userID).Err()
}
