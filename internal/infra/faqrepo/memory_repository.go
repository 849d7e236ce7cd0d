package faqrepo

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/faq-kb/internal/domain/faq"
)

// MemoryRepository is an in-memory faq.Repository used for tests/dev.
type MemoryRepository struct {
	mu sync.RWMutex

	records map[string]faq.Record
	order   []string
	newID   func() string
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]faq.Record),
		newID:   uuid.NewString,
	}
}

// FindAll implements faq.Repository. Records come back in insertion order.
func (r *MemoryRepository) FindAll(_ context.Context) ([]faq.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(faq.Record) bool { return true }), nil
}

// FindByDepartment implements faq.Repository.
func (r *MemoryRepository) FindByDepartment(_ context.Context, department string) ([]faq.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(rec faq.Record) bool { return rec.Department == department }), nil
}

// Search implements faq.Repository with a linear scan.
func (r *MemoryRepository) Search(_ context.Context, query faq.SearchQuery) ([]faq.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(query.Matches), nil
}

// Insert implements faq.Repository.
func (r *MemoryRepository) Insert(_ context.Context, record faq.Record) (faq.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record = record.Clone()
	record.ID = r.newID()
	r.records[record.ID] = record
	r.order = append(r.order, record.ID)
	return record.Clone(), nil
}

// UpdateByID implements faq.Repository.
func (r *MemoryRepository) UpdateByID(_ context.Context, id string, patch faq.Patch) (faq.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.records[id]
	if !ok {
		return faq.Record{}, false, nil
	}
	updated := patch.Apply(current)
	r.records[id] = updated
	return updated.Clone(), true, nil
}

// DeleteByID implements faq.Repository.
func (r *MemoryRepository) DeleteByID(_ context.Context, id string) (faq.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return faq.Record{}, false, nil
	}
	delete(r.records, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return record, true, nil
}

func (r *MemoryRepository) collect(keep func(faq.Record) bool) []faq.Record {
	out := make([]faq.Record, 0, len(r.order))
	for _, id := range r.order {
		rec := r.records[id]
		if keep(rec) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

var _ faq.Repository = (*MemoryRepository)(nil)
