package roster

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/roster/internal/core/eventbus"
	"github.com/colonyops/roster/internal/core/export"
	"github.com/colonyops/roster/internal/core/student"
	"github.com/colonyops/roster/pkg/kv"
)

// studentsKey is the single cache key the fetched collection lives under.
const studentsKey = "students"

// ErrSuperseded is returned by Refresh when a newer Refresh started before
// this one finished. Its result has been discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// DeleteResult is the outcome of deleting one record during a bulk delete.
type DeleteResult struct {
	ID  string
	Err error
}

// BulkReport summarizes a bulk delete.
type BulkReport struct {
	Deleted []string
	Failed  []DeleteResult
}

// Total returns the number of ids attempted.
func (r BulkReport) Total() int { return len(r.Deleted) + len(r.Failed) }

// StudentService wraps the remote student.Store with client-side validation,
// the shared collection cache, and event publishing.
type StudentService struct {
	store       student.Store
	bus         *eventbus.EventBus
	cache       *kv.Store[string, []student.Record]
	rules       student.RuleTable
	concurrency int
	log         zerolog.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
}

// NewStudentService creates a StudentService. deleteConcurrency bounds the
// number of deletions in flight during a bulk delete. bus may be nil.
func NewStudentService(store student.Store, bus *eventbus.EventBus, deleteConcurrency int, log zerolog.Logger) *StudentService {
	if deleteConcurrency < 1 {
		deleteConcurrency = 1
	}
	return &StudentService{
		store:       store,
		bus:         bus,
		cache:       kv.New[string, []student.Record](),
		rules:       student.Rules,
		concurrency: deleteConcurrency,
		log:         log,
	}
}

// Refresh refetches the full collection and replaces the cache. Starting a
// Refresh cancels any Refresh still in flight; the older call then returns
// ErrSuperseded and leaves the cache alone.
func (s *StudentService) Refresh(ctx context.Context) ([]student.Record, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	defer cancel()

	records, err := s.store.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.log.Debug().Uint64("generation", gen).Msg("discarding superseded refresh")
		return nil, ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		return nil, fmt.Errorf("refresh students: %w", err)
	}

	s.cache.Set(studentsKey, records)
	if s.bus != nil {
		s.bus.PublishStudentsRefreshed(eventbus.StudentsRefreshedPayload{Count: len(records)})
	}

	return records, nil
}

// Cached returns the last fetched collection and when it was fetched.
func (s *StudentService) Cached() ([]student.Record, time.Time, bool) {
	e, ok := s.cache.Entry(studentsKey)
	return e.Value, e.StoredAt, ok
}

// Invalidate drops the cached collection.
func (s *StudentService) Invalidate() {
	s.cache.Delete(studentsKey)
}

// List returns the cached collection, fetching it when the cache is empty.
func (s *StudentService) List(ctx context.Context) ([]student.Record, error) {
	if records, _, ok := s.Cached(); ok {
		return records, nil
	}
	return s.Refresh(ctx)
}

// Get fetches a single record from the API.
func (s *StudentService) Get(ctx context.Context, id string) (student.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return student.Record{}, fmt.Errorf("get student %s: %w", id, err)
	}
	return rec, nil
}

// Validate runs the form rules and the duplicate-email check against the
// current collection. selfID is the id being edited, or empty for a new record.
func (s *StudentService) Validate(ctx context.Context, f student.Fields, selfID string) (student.Record, error) {
	rec, err := s.rules.Parse(f)
	if err != nil {
		return student.Record{}, err
	}

	existing, err := s.List(ctx)
	if err != nil {
		return student.Record{}, err
	}

	if err := student.CheckUniqueEmail(existing, rec.Email, selfID); err != nil {
		return student.Record{}, err
	}

	return rec, nil
}

// Create validates f and creates the record. On success the cache is
// invalidated; callers refetch to see the new collection.
func (s *StudentService) Create(ctx context.Context, f student.Fields) (student.Record, error) {
	rec, err := s.Validate(ctx, f, "")
	if err != nil {
		return student.Record{}, err
	}

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return student.Record{}, fmt.Errorf("create student: %w", err)
	}

	s.Invalidate()
	s.log.Info().Str("id", created.ID).Msg("student created")
	if s.bus != nil {
		s.bus.PublishStudentCreated(eventbus.StudentCreatedPayload{Record: created})
	}

	return created, nil
}

// Update validates f and replaces the record with the given id.
func (s *StudentService) Update(ctx context.Context, id string, f student.Fields) (student.Record, error) {
	rec, err := s.Validate(ctx, f, id)
	if err != nil {
		return student.Record{}, err
	}
	rec.ID = id

	updated, err := s.store.Update(ctx, id, rec)
	if err != nil {
		return student.Record{}, fmt.Errorf("update student %s: %w", id, err)
	}

	s.Invalidate()
	s.log.Info().Str("id", id).Msg("student updated")
	if s.bus != nil {
		s.bus.PublishStudentUpdated(eventbus.StudentUpdatedPayload{Record: updated})
	}

	return updated, nil
}

// Delete removes a single record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete student %s: %w", id, err)
	}

	s.Invalidate()
	s.log.Info().Str("id", id).Msg("student deleted")
	if s.bus != nil {
		s.bus.PublishStudentDeleted(eventbus.StudentDeletedPayload{ID: id})
	}

	return nil
}

// DeleteMany deletes ids independently with bounded concurrency and
// streams one result per id. A failed deletion never stops the others.
// The channel is closed once every id has completed.
func (s *StudentService) DeleteMany(ctx context.Context, ids []string) <-chan DeleteResult {
	out := make(chan DeleteResult, len(ids))

	go func() {
		defer close(out)

		var g errgroup.Group
		g.SetLimit(s.concurrency)

		var mu sync.Mutex
		var deleted, failed int

		for _, id := range ids {
			g.Go(func() error {
				err := s.store.Delete(ctx, id)
				if err != nil {
					s.log.Warn().Err(err).Str("id", id).Msg("bulk delete: failed")
					err = fmt.Errorf("delete student %s: %w", id, err)
				}

				mu.Lock()
				if err != nil {
					failed++
				} else {
					deleted++
				}
				mu.Unlock()

				out <- DeleteResult{ID: id, Err: err}
				return nil
			})
		}
		_ = g.Wait()

		if deleted > 0 {
			s.Invalidate()
		}
		s.log.Info().Int("deleted", deleted).Int("failed", failed).Msg("bulk delete finished")
		if s.bus != nil {
			s.bus.PublishStudentsBulkDeleted(eventbus.StudentsBulkDeletedPayload{Deleted: deleted, Failed: failed})
		}
	}()

	return out
}

// BulkDelete runs DeleteMany to completion and reports the outcome.
func (s *StudentService) BulkDelete(ctx context.Context, ids []string) BulkReport {
	var report BulkReport
	for res := range s.DeleteMany(ctx, ids) {
		if res.Err != nil {
			report.Failed = append(report.Failed, res)
			continue
		}
		report.Deleted = append(report.Deleted, res.ID)
	}
	return report
}

// Export writes records to dir in the given format and returns the file path.
func (s *StudentService) Export(records []student.Record, format export.Format, dir string, at time.Time) (string, error) {
	path := filepath.Join(dir, export.FileName("students", format, at))
	data := export.Dataset{
		Title:   "Students",
		Headers: student.Headers,
		Rows:    student.Rows(records),
	}

	if err := export.WriteFile(path, format, data); err != nil {
		return "", err
	}

	s.log.Info().Str("path", path).Int("rows", len(records)).Msg("students exported")
	return path, nil
}
