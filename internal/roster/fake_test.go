package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/colonyops/roster/internal/core/student"
)

// fakeStore is an in-memory student.Store. listHook, when set, runs at the
// start of List and may block or fail.
type fakeStore struct {
	mu        sync.Mutex
	records   []student.Record
	nextID    int
	failIDs   map[string]error
	listCalls int
	listHook  func(ctx context.Context, call int) error
	deleted   []string
}

func newFakeStore(records ...student.Record) *fakeStore {
	return &fakeStore{records: slices.Clone(records), nextID: len(records) + 1, failIDs: map[string]error{}}
}

func (f *fakeStore) List(ctx context.Context) ([]student.Record, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	hook := f.listHook
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, call); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.records), nil
}

func (f *fakeStore) Get(_ context.Context, id string) (student.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return student.Record{}, student.ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, rec student.Record) (student.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = fmt.Sprintf("s%d", f.nextID)
	f.nextID++
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) Update(_ context.Context, id string, rec student.Record) (student.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			rec.ID = id
			f.records[i] = rec
			return rec, nil
		}
	}
	return student.Record{}, student.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failIDs[id]; ok {
		return err
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records = slices.Delete(f.records, i, i+1)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return student.ErrNotFound
}

var errBoom = errors.New("boom")
