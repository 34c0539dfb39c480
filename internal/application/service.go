package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/feed"
	"github.com/TomZ28/matcha/internal/model"
	"github.com/TomZ28/matcha/internal/store"
)

// EventChannel is the Redis pub/sub channel application lifecycle events
// are published on, for SSE forwarding by the web frontend.
const EventChannel = "EVENT_APPLICATION_STATUS"

// Store is the persistence surface the service needs. *store.Store
// satisfies it.
type Store interface {
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	InsertApplication(ctx context.Context, userID, jobID string) (string, error)
	ApplicationStatus(ctx context.Context, appID string) (status, userID, jobID string, err error)
	UpdateApplicationStatus(ctx context.Context, appID, newStatus string) error
	IsCompanyEmployee(ctx context.Context, userID, jobID string) (bool, error)
	PaginatedApplicationsByUser(ctx context.Context, userID string, p feed.Params) ([]model.Application, error)
}

// Service encapsulates the application lifecycle rules. It is
// transport-agnostic; the HTTP handler delegates here.
type Service struct {
	store Store
	rdb   *redis.Client
	log   *zap.Logger
}

// NewService returns a configured Service.
func NewService(st Store, rdb *redis.Client, log *zap.Logger) *Service {
	return &Service{store: st, rdb: rdb, log: log}
}

// Apply files a new application for userID against jobID at "applied"
// status and announces it on the event channel.
func (s *Service) Apply(ctx context.Context, userID, jobID string) (string, error) {
	if jobID == "" {
		return "", &store.ValidationError{Msg: "jobid is required"}
	}
	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		return "", err
	}

	appID, err := s.store.InsertApplication(ctx, userID, jobID)
	if err != nil {
		return "", err
	}

	s.publish(ctx, appID, userID, "", string(StatusApplied))
	return appID, nil
}

// UpdateStatus transitions an application to newStatus on behalf of
// actorID. Withdrawal is reserved for the applicant; every other move
// requires the actor to belong to the company that owns the posting.
func (s *Service) UpdateStatus(ctx context.Context, actorID, appID, newStatusStr string) error {
	newStatus, err := ParseStatus(newStatusStr)
	if err != nil {
		return &store.ValidationError{Msg: err.Error()}
	}

	currentStr, applicantID, jobID, err := s.store.ApplicationStatus(ctx, appID)
	if err != nil {
		return err
	}
	current, err := ParseStatus(currentStr)
	if err != nil {
		return fmt.Errorf("application %s has corrupt status %q: %w", appID, currentStr, err)
	}

	if IsWithdrawn(newStatus) {
		if actorID != applicantID {
			return store.ErrNotFound // do not reveal the application exists
		}
	} else {
		employee, err := s.store.IsCompanyEmployee(ctx, actorID, jobID)
		if err != nil {
			return err
		}
		if !employee {
			return store.ErrNotFound
		}
	}

	if !IsTransitionAllowed(current, newStatus) {
		return &store.ValidationError{
			Msg: fmt.Sprintf("cannot change application status from %s to %s", current, newStatus),
		}
	}

	if err := s.store.UpdateApplicationStatus(ctx, appID, string(newStatus)); err != nil {
		return err
	}

	s.publish(ctx, appID, applicantID, string(current), string(newStatus))
	return nil
}

// Withdraw is the applicant-facing shortcut for moving an application to
// withdrawn.
func (s *Service) Withdraw(ctx context.Context, userID, appID string) error {
	return s.UpdateStatus(ctx, userID, appID, string(StatusWithdrawn))
}

// ListForUser returns one page of the user's applications; it is also the
// fetch collaborator behind the applications feed.
func (s *Service) ListForUser(ctx context.Context, userID string, p feed.Params) ([]model.Application, error) {
	return s.store.PaginatedApplicationsByUser(ctx, userID, p)
}

// publish emits a status event. Event delivery is best-effort: a failed
// publish is logged, never surfaced to the caller.
func (s *Service) publish(ctx context.Context, appID, applicantID, from, to string) {
	event, _ := json.Marshal(map[string]string{
		"type":          "EVENT_APPLICATION_STATUS",
		"applicationId": appID,
		"userId":        applicantID,
		"from":          from,
		"to":            to,
		"at":            time.Now().UTC().Format(time.RFC3339),
	})
	if err := s.rdb.Publish(ctx, EventChannel, event).Err(); err != nil {
		s.log.Warn("publish application event failed",
			zap.String("applicationId", appID), zap.Error(err))
	}
}
