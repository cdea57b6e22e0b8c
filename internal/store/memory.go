// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package store

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

func init() {
	RegisterBackend("memory", func(_ *StorageConfig, _ TokenCipher) (Registry, error) {
		return NewMemoryRegistry(), nil
	})
}

// MemoryRegistry is a mutex-guarded in-memory Registry used by tests and
// the "memory" backend. Tokens are held in plaintext; nothing reaches disk.
type MemoryRegistry struct {
	mu        sync.RWMutex
	stores    map[string]*Store    // keyed by ID
	byDomain  map[string]string    // shop domain -> ID
	questions map[string]*Question // keyed by ID
	seq       map[string]int       // question ID -> insertion order, for stable sorting
	nextSeq   int
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		stores:    map[string]*Store{},
		byDomain:  map[string]string{},
		questions: map[string]*Question{},
		seq:       map[string]int{},
	}
}

func (r *MemoryRegistry) Stores() StoreRegistry    { return (*memoryStoreRegistry)(r) }
func (r *MemoryRegistry) Questions() QuestionStore { return (*memoryQuestionStore)(r) }
func (r *MemoryRegistry) Close() error             { return nil }

type memoryStoreRegistry MemoryRegistry

func (r *memoryStoreRegistry) Upsert(_ context.Context, s *Store) (*Store, error) {
	if s.ShopDomain == "" {
		return nil, ssgerr.New(ssgerr.CodeStoreInvalidInput, "shop domain is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	existing, ok := r.stores[r.byDomain[s.ShopDomain]]
	if !ok {
		existing = &Store{
			ID:         uuid.NewString(),
			ShopDomain: s.ShopDomain,
			CreatedAt:  now,
		}
		r.stores[existing.ID] = existing
		r.byDomain[existing.ShopDomain] = existing.ID
	}

	existing.AccessToken = s.AccessToken
	existing.Scope = s.Scope
	existing.Active = s.Active
	existing.APIVersion = s.APIVersion
	existing.Metadata = maps.Clone(s.Metadata)
	existing.UpdatedAt = now

	return cloneStore(existing), nil
}

func (r *memoryStoreRegistry) GetByID(_ context.Context, id string) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, ssgerr.Errorf(ssgerr.CodeStoreNotFound, "store %s not found", id)
	}
	return cloneStore(s), nil
}

func (r *memoryStoreRegistry) GetByDomain(_ context.Context, domain string) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[r.byDomain[domain]]
	if !ok {
		return nil, ssgerr.Errorf(ssgerr.CodeStoreNotFound, "store %s not found", domain)
	}
	return cloneStore(s), nil
}

func (r *memoryStoreRegistry) List(_ context.Context, opts ListOpts) ([]*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Store, 0, len(r.stores))
	for _, s := range r.stores {
		all = append(all, cloneStore(s))
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ShopDomain < all[j].ShopDomain
	})

	return paginate(all, opts), nil
}

func (r *memoryStoreRegistry) SetActive(_ context.Context, domain string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stores[r.byDomain[domain]]
	if !ok {
		return ssgerr.Errorf(ssgerr.CodeStoreNotFound, "store %s not found", domain)
	}
	s.Active = active
	s.UpdatedAt = time.Now()
	return nil
}

type memoryQuestionStore MemoryRegistry

func (r *memoryQuestionStore) Create(_ context.Context, q *Question) error {
	if q.ID == "" || q.StoreID == "" || q.QuestionText == "" {
		return ssgerr.New(ssgerr.CodeQuestionInvalidInput, "question id, store id, and text are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.questions[q.ID]; exists {
		return ssgerr.Errorf(ssgerr.CodeStoreConflict, "question %s already exists", q.ID)
	}

	r.questions[q.ID] = cloneQuestion(q)
	r.seq[q.ID] = r.nextSeq
	r.nextSeq++
	return nil
}

func (r *memoryQuestionStore) Get(_ context.Context, id string) (*Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questions[id]
	if !ok {
		return nil, ssgerr.Errorf(ssgerr.CodeQuestionNotFound, "question %s not found", id)
	}
	return cloneQuestion(q), nil
}

func (r *memoryQuestionStore) Update(_ context.Context, q *Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.questions[q.ID]; !ok {
		return ssgerr.Errorf(ssgerr.CodeQuestionNotFound, "question %s not found", q.ID)
	}

	updated := cloneQuestion(q)
	updated.UpdatedAt = time.Now()
	r.questions[q.ID] = updated
	return nil
}

func (r *memoryQuestionStore) ListByStore(_ context.Context, storeID string, opts ListOpts) ([]*Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Question
	for _, q := range r.questions {
		if q.StoreID == storeID {
			out = append(out, cloneQuestion(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})

	return paginate(out, opts), nil
}

func (r *memoryQuestionStore) CountByStore(_ context.Context, storeID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, q := range r.questions {
		if q.StoreID == storeID {
			n++
		}
	}
	return n, nil
}

func paginate[T any](items []T, opts ListOpts) []T {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	if opts.Offset >= len(items) {
		return []T{}
	}
	end := opts.Offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[opts.Offset:end]
}

func cloneStore(s *Store) *Store {
	out := *s
	out.Metadata = maps.Clone(s.Metadata)
	return &out
}

func cloneQuestion(q *Question) *Question {
	out := *q
	if q.DataPoints != nil {
		out.DataPoints = make([]map[string]any, len(q.DataPoints))
		for i, dp := range q.DataPoints {
			out.DataPoints[i] = maps.Clone(dp)
		}
	}
	return &out
}
