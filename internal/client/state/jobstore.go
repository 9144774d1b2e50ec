package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/job-application-tracker/internal/client/api"
	"github.com/iliyamo/job-application-tracker/internal/model"
)

// JobAPI is the slice of the API client the job store needs.
type JobAPI interface {
	ListJobs(ctx context.Context, token string) ([]model.Job, error)
	CreateJob(ctx context.Context, token string, in model.JobInput) (model.Job, error)
	UpdateJob(ctx context.Context, token, id string, in model.JobInput) (model.Job, error)
	UpdateJobStatus(ctx context.Context, token, id string, status model.JobStatus) (model.Job, error)
	DeleteJob(ctx context.Context, token, id string) error
}

// JobSnapshot is what job store subscribers observe: the held list, the
// loading flag and the last error message ("" when the last operation
// succeeded).
type JobSnapshot struct {
	Jobs    []model.Job
	Loading bool
	Err     string
}

// JobSummary is derived from the held list whenever it changes.
type JobSummary struct {
	Total             int
	ByStatus          map[model.JobStatus]int
	UpcomingFollowUps int
}

// JobStore is the process-wide cache of the authenticated user's job list.
// It is decoupled from any single view so multiple consumers stay
// consistent.  Mutations reconcile eagerly against the server response: the
// held list only changes after the server confirms.  Overlapping calls are
// not deduplicated; suppressing duplicate submissions is the caller's
// responsibility.
type JobStore struct {
	api     JobAPI
	session *Session

	mu      sync.Mutex
	jobs    []model.Job
	loading bool
	errMsg  string
	subs    map[int]func(JobSnapshot)
	nextID  int
}

func NewJobStore(a JobAPI, session *Session) *JobStore {
	return &JobStore{api: a, session: session, jobs: []model.Job{}, subs: map[int]func(JobSnapshot){}}
}

// Subscribe registers fn and immediately calls it with the current snapshot
// (replay-last), then on every subsequent change until unsubscribed.
func (s *JobStore) Subscribe(fn func(JobSnapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns the current state without subscribing.
func (s *JobStore) Snapshot() JobSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Refresh replaces the held list with the server's.  On failure the list is
// left untouched and a display message is published.  The loading flag is
// always cleared on completion.
func (s *JobStore) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	jobs, err := s.api.ListJobs(ctx, s.session.Token())

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = toErrorMessage(err)
	} else {
		s.jobs = jobs
		if s.jobs == nil {
			s.jobs = []model.Job{}
		}
		s.errMsg = ""
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// AddJob creates a job remotely and prepends the confirmed record to the
// held list (most-recent-first).  On failure the list is untouched, the
// error is published and returned.
func (s *JobStore) AddJob(ctx context.Context, in model.JobInput) (model.Job, error) {
	created, err := s.api.CreateJob(ctx, s.session.Token(), in)
	if err != nil {
		s.fail(err)
		return model.Job{}, err
	}
	s.mu.Lock()
	s.jobs = append([]model.Job{created}, s.jobs...)
	s.errMsg = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return created, nil
}

// UpdateJob replaces the matching entry in place, preserving list order.
func (s *JobStore) UpdateJob(ctx context.Context, id string, in model.JobInput) (model.Job, error) {
	updated, err := s.api.UpdateJob(ctx, s.session.Token(), id, in)
	if err != nil {
		s.fail(err)
		return model.Job{}, err
	}
	s.replace(updated)
	return updated, nil
}

// UpdateJobStatus is UpdateJob limited to the status field.
func (s *JobStore) UpdateJobStatus(ctx context.Context, id string, status model.JobStatus) (model.Job, error) {
	updated, err := s.api.UpdateJobStatus(ctx, s.session.Token(), id, status)
	if err != nil {
		s.fail(err)
		return model.Job{}, err
	}
	s.replace(updated)
	return updated, nil
}

// RemoveJob deletes remotely and drops the matching entry from the held
// list.
func (s *JobStore) RemoveJob(ctx context.Context, id string) error {
	if err := s.api.DeleteJob(ctx, s.session.Token(), id); err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	kept := s.jobs[:0:0]
	for _, j := range s.jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	if kept == nil {
		kept = []model.Job{}
	}
	s.jobs = kept
	s.errMsg = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// ClearError resets the error message stream.
func (s *JobStore) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Summary derives counts from the held list: the total, a zero-filled
// bucket for every status, and how many jobs have a follow-up that is not
// yet past (evaluated against the current time).
func (s *JobStore) Summary() JobSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	byStatus := make(map[model.JobStatus]int, len(model.AllStatuses))
	for _, st := range model.AllStatuses {
		byStatus[st] = 0
	}
	upcoming := 0
	now := time.Now()
	for _, j := range s.jobs {
		byStatus[j.Status]++
		if j.NextFollowUp != nil && !j.NextFollowUp.Before(now) {
			upcoming++
		}
	}
	return JobSummary{Total: len(s.jobs), ByStatus: byStatus, UpcomingFollowUps: upcoming}
}

func (s *JobStore) replace(updated model.Job) {
	s.mu.Lock()
	for i := range s.jobs {
		if s.jobs[i].ID == updated.ID {
			s.jobs[i] = updated
			break
		}
	}
	s.errMsg = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *JobStore) fail(err error) {
	s.mu.Lock()
	s.errMsg = toErrorMessage(err)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *JobStore) snapshotLocked() JobSnapshot {
	jobs := make([]model.Job, len(s.jobs))
	copy(jobs, s.jobs)
	return JobSnapshot{Jobs: jobs, Loading: s.loading, Err: s.errMsg}
}

func (s *JobStore) notify(snap JobSnapshot) {
	s.mu.Lock()
	fns := make([]func(JobSnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// toErrorMessage converts a failed call into a display string: the server's
// structured message when present, a templated message when only a status
// is known, and a generic fallback otherwise.
func toErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.StatusCode > 0 {
			return fmt.Sprintf("Request failed (%d)", apiErr.StatusCode)
		}
	}
	return "Unexpected error while talking to the API"
}
