package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/TomZ28/matcha/internal/application"
	"github.com/TomZ28/matcha/internal/feed"
	"github.com/TomZ28/matcha/internal/model"
	"github.com/TomZ28/matcha/internal/store"
)

// stubStore scripts the persistence layer per test. Unset funcs fail the
// test if called.
type stubStore struct {
	t *testing.T

	getJob            func(jobID string) (*model.Job, error)
	insertApplication func(userID, jobID string) (string, error)
	applicationStatus func(appID string) (string, string, string, error)
	updateStatus      func(appID, newStatus string) error
	isEmployee        func(userID, jobID string) (bool, error)
}

func (s *stubStore) GetJob(_ context.Context, jobID string) (*model.Job, error) {
	if s.getJob == nil {
		s.t.Fatal("unexpected GetJob call")
	}
	return s.getJob(jobID)
}

func (s *stubStore) InsertApplication(_ context.Context, userID, jobID string) (string, error) {
	if s.insertApplication == nil {
		s.t.Fatal("unexpected InsertApplication call")
	}
	return s.insertApplication(userID, jobID)
}

func (s *stubStore) ApplicationStatus(_ context.Context, appID string) (string, string, string, error) {
	if s.applicationStatus == nil {
		s.t.Fatal("unexpected ApplicationStatus call")
	}
	return s.applicationStatus(appID)
}

func (s *stubStore) UpdateApplicationStatus(_ context.Context, appID, newStatus string) error {
	if s.updateStatus == nil {
		s.t.Fatal("unexpected UpdateApplicationStatus call")
	}
	return s.updateStatus(appID, newStatus)
}

func (s *stubStore) IsCompanyEmployee(_ context.Context, userID, jobID string) (bool, error) {
	if s.isEmployee == nil {
		s.t.Fatal("unexpected IsCompanyEmployee call")
	}
	return s.isEmployee(userID, jobID)
}

func (s *stubStore) PaginatedApplicationsByUser(_ context.Context, _ string, _ feed.Params) ([]model.Application, error) {
	s.t.Fatal("unexpected PaginatedApplicationsByUser call")
	return nil, nil
}

// testRedis points at a closed port; event publishing is best-effort and
// must not affect the outcome under test.
func testRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

func newService(st *stubStore) *application.Service {
	return application.NewService(st, testRedis(), zap.NewNop())
}

func TestApplyMissingJob(t *testing.T) {
	svc := newService(&stubStore{t: t,
		getJob: func(string) (*model.Job, error) { return nil, store.ErrNotFound },
	})

	_, err := svc.Apply(context.Background(), "user-1", "job-404")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Apply error = %v, want ErrNotFound", err)
	}
}

func TestApplyPropagatesTransientJobError(t *testing.T) {
	boom := fmt.Errorf("get jobposting: connection reset")
	svc := newService(&stubStore{t: t,
		getJob: func(string) (*model.Job, error) { return nil, boom },
	})

	_, err := svc.Apply(context.Background(), "user-1", "job-1")
	if !errors.Is(err, boom) {
		t.Fatalf("Apply error = %v, want the store error", err)
	}
	if errors.Is(err, store.ErrNotFound) {
		t.Error("transient store failure reported as not-found")
	}
}

func TestApplyDuplicate(t *testing.T) {
	svc := newService(&stubStore{t: t,
		getJob: func(string) (*model.Job, error) { return &model.Job{ID: "job-1"}, nil },
		insertApplication: func(string, string) (string, error) {
			return "", &store.ValidationError{Msg: "you have already applied to this job"}
		},
	})

	_, err := svc.Apply(context.Background(), "user-1", "job-1")
	var ve *store.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Apply error = %v, want ValidationError", err)
	}
}

func TestApplyPropagatesTransientInsertError(t *testing.T) {
	boom := fmt.Errorf("insert application: broken pipe")
	svc := newService(&stubStore{t: t,
		getJob:            func(string) (*model.Job, error) { return &model.Job{ID: "job-1"}, nil },
		insertApplication: func(string, string) (string, error) { return "", boom },
	})

	_, err := svc.Apply(context.Background(), "user-1", "job-1")
	if !errors.Is(err, boom) {
		t.Fatalf("Apply error = %v, want the store error", err)
	}
	var ve *store.ValidationError
	if errors.As(err, &ve) {
		t.Error("transport failure reported as a duplicate application")
	}
}

func TestUpdateStatusByOutsider(t *testing.T) {
	svc := newService(&stubStore{t: t,
		applicationStatus: func(string) (string, string, string, error) {
			return string(application.StatusApplied), "applicant-1", "job-1", nil
		},
		isEmployee: func(string, string) (bool, error) { return false, nil },
	})

	err := svc.UpdateStatus(context.Background(), "outsider", "app-1", string(application.StatusInterview))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateStatus error = %v, want ErrNotFound", err)
	}
}

func TestWithdrawByNonApplicant(t *testing.T) {
	svc := newService(&stubStore{t: t,
		applicationStatus: func(string) (string, string, string, error) {
			return string(application.StatusApplied), "applicant-1", "job-1", nil
		},
	})

	err := svc.Withdraw(context.Background(), "someone-else", "app-1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Withdraw error = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	svc := newService(&stubStore{t: t,
		applicationStatus: func(string) (string, string, string, error) {
			return string(application.StatusNotSelected), "applicant-1", "job-1", nil
		},
		isEmployee: func(string, string) (bool, error) { return true, nil },
	})

	err := svc.UpdateStatus(context.Background(), "recruiter", "app-1", string(application.StatusInterview))
	var ve *store.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("UpdateStatus error = %v, want ValidationError", err)
	}
}
