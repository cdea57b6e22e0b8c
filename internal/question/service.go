// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

// Package question coordinates the question lifecycle: resolve the
// store, create the record, invoke the analysis client, and finalize the
// record's status.
package question

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shopsage-dev/shopsage/internal/agent"
	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

const (
	// DefaultPerPage is the page size when the caller does not specify one.
	DefaultPerPage = 20

	// MaxPerPage bounds the page size a caller may request.
	MaxPerPage = 100
)

// Analyzer is the outbound analysis call. Implemented by agent.Client.
type Analyzer interface {
	Analyze(ctx context.Context, q *store.Question, s *store.Store) (*agent.Result, error)
}

// Page describes one page of a question listing.
type Page struct {
	Page    int
	PerPage int
	Total   int64
}

// Service orchestrates question processing.
type Service struct {
	stores    store.StoreRegistry
	questions store.QuestionStore
	analyzer  Analyzer
}

// NewService creates a question Service.
func NewService(stores store.StoreRegistry, questions store.QuestionStore, analyzer Analyzer) (*Service, error) {
	if stores == nil || questions == nil || analyzer == nil {
		return nil, ssgerr.New(ssgerr.CodeCLISetupFailure, "question service requires stores, questions, and analyzer")
	}
	return &Service{stores: stores, questions: questions, analyzer: analyzer}, nil
}

// Ask resolves the store by shop domain, creates a processing question
// record, runs the analysis call, and finalizes the record. The store
// check happens before any record exists; a store that is missing or not
// usable fails with a not-found error and leaves nothing behind, while
// registry failures propagate as-is. Any later failure persists
// status=failed with the error message on the record and returns a
// processing failure carrying the same message.
func (s *Service) Ask(ctx context.Context, shopDomain, text string) (*store.Question, error) {
	st, err := s.stores.GetByDomain(ctx, shopDomain)
	if err != nil {
		if ssgerr.IsNotFound(err) {
			return nil, ssgerr.New(ssgerr.CodeStoreNotFound, "Store not found or inactive",
				ssgerr.FieldShop(shopDomain))
		}
		return nil, err
	}
	if !st.Usable() {
		return nil, ssgerr.New(ssgerr.CodeStoreNotFound, "Store not found or inactive",
			ssgerr.FieldShop(shopDomain))
	}

	if text == "" {
		return nil, ssgerr.New(ssgerr.CodeQuestionProcessingFailure, "question text is required")
	}

	now := time.Now()
	q := &store.Question{
		ID:           uuid.NewString(),
		StoreID:      st.ID,
		QuestionText: text,
		Status:       store.QuestionStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := q.Transition(store.QuestionStatusProcessing); err != nil {
		return nil, ssgerr.New(ssgerr.CodeQuestionProcessingFailure, err.Error())
	}
	if err := s.questions.Create(ctx, q); err != nil {
		slog.Error("creating question record failed", "shop", shopDomain, "error", err)
		return nil, ssgerr.New(ssgerr.CodeQuestionProcessingFailure, "failed to create question record")
	}

	result, err := s.analyzer.Analyze(ctx, q, st)
	if err != nil {
		return nil, s.fail(ctx, q, err)
	}

	if err := q.Transition(store.QuestionStatusCompleted); err != nil {
		return nil, s.fail(ctx, q, err)
	}
	q.Answer = result.Answer
	q.Confidence = result.Confidence
	q.QueryUsed = result.QueryUsed
	q.DataPoints = result.DataPoints
	q.ProcessingTimeMS = result.ProcessingTimeMS

	if err := s.questions.Update(ctx, q); err != nil {
		return nil, s.fail(ctx, q, err)
	}

	return q, nil
}

// fail persists the failed status with the error's message and returns
// the processing failure the caller sees. The record update is best
// effort; a second failure is logged, never silently dropped.
func (s *Service) fail(ctx context.Context, q *store.Question, cause error) error {
	msg := cause.Error()

	if !q.Status.Terminal() {
		if err := q.Transition(store.QuestionStatusFailed); err != nil {
			slog.Error("marking question failed rejected by state machine",
				"question_id", q.ID, "status", q.Status, "error", err)
		}
	}
	q.ErrorMessage = msg
	q.Answer = ""
	q.Confidence = 0
	q.QueryUsed = ""
	q.DataPoints = nil

	if err := s.questions.Update(ctx, q); err != nil {
		slog.Error("persisting failed question status", "question_id", q.ID, "error", err)
	}

	return ssgerr.New(ssgerr.CodeQuestionProcessingFailure, msg, ssgerr.FieldQuestionID(q.ID))
}

// Get returns the question by id.
func (s *Service) Get(ctx context.Context, id string) (*store.Question, error) {
	return s.questions.Get(ctx, id)
}

// List returns the store's questions ordered by creation time descending,
// paginated. An unknown shop domain yields an empty page rather than an
// error, matching the read-only listing semantics.
func (s *Service) List(ctx context.Context, shopDomain string, page, perPage int) ([]*store.Question, *Page, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	st, err := s.stores.GetByDomain(ctx, shopDomain)
	if err != nil {
		if ssgerr.IsNotFound(err) {
			return []*store.Question{}, &Page{Page: page, PerPage: perPage}, nil
		}
		return nil, nil, err
	}

	questions, err := s.questions.ListByStore(ctx, st.ID, store.ListOpts{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	})
	if err != nil {
		return nil, nil, err
	}

	total, err := s.questions.CountByStore(ctx, st.ID)
	if err != nil {
		return nil, nil, err
	}

	return questions, &Page{Page: page, PerPage: perPage, Total: total}, nil
}
