// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package server

import (
	"context"
	"net/url"
	"time"

	"github.com/shopsage-dev/shopsage/internal/question"
	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// OAuthService drives the Shopify OAuth flow. Implemented by
// shopify.OAuth.
type OAuthService interface {
	BeginAuth(shop string) (authURL, state string, err error)
	CompleteCallback(ctx context.Context, cookies map[string]string, query url.Values) (*store.Store, error)
	Disconnect(ctx context.Context, shop string) error
}

// QuestionService orchestrates question processing. Implemented by
// question.Service.
type QuestionService interface {
	Ask(ctx context.Context, shopDomain, text string) (*store.Question, error)
	Get(ctx context.Context, id string) (*store.Question, error)
	List(ctx context.Context, shopDomain string, page, perPage int) ([]*store.Question, *question.Page, error)
}

// StoreReader is the thin read surface over the store registry.
type StoreReader interface {
	GetByID(ctx context.Context, id string) (*store.Store, error)
	List(ctx context.Context, opts store.ListOpts) ([]*store.Store, error)
}

// Services holds dependencies injected into route handlers.
// Each field is an interface so subsystems can be mocked in tests.
type Services struct {
	oauth     OAuthService
	questions QuestionService
	stores    StoreReader
}

// NewServices creates a Services instance with validation.
func NewServices(oauth OAuthService, questions QuestionService, stores StoreReader) (*Services, error) {
	if oauth == nil {
		return nil, ssgerr.New(ssgerr.CodeCLISetupFailure, "oauth service is required")
	}
	if questions == nil {
		return nil, ssgerr.New(ssgerr.CodeCLISetupFailure, "question service is required")
	}
	if stores == nil {
		return nil, ssgerr.New(ssgerr.CodeCLISetupFailure, "store reader is required")
	}
	return &Services{oauth: oauth, questions: questions, stores: stores}, nil
}

// --- JSON projections ---

// StorePayload is the serialized store record. The access token is
// deliberately absent.
type StorePayload struct {
	ID         string    `json:"id"`
	ShopDomain string    `json:"shop_domain"`
	Scope      string    `json:"scope"`
	Active     bool      `json:"active"`
	APIVersion string    `json:"api_version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// QuestionPayload is the serialized question record.
type QuestionPayload struct {
	ID               string           `json:"id"`
	StoreID          string           `json:"store_id"`
	Question         string           `json:"question"`
	Status           string           `json:"status"`
	Answer           string           `json:"answer,omitempty"`
	Confidence       float64          `json:"confidence,omitempty"`
	QueryUsed        string           `json:"query_used,omitempty"`
	DataPoints       []map[string]any `json:"data_points,omitempty"`
	ProcessingTimeMS int64            `json:"processing_time_ms,omitempty"`
	ErrorMessage     string           `json:"error_message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func storePayload(s *store.Store) StorePayload {
	return StorePayload{
		ID:         s.ID,
		ShopDomain: s.ShopDomain,
		Scope:      s.Scope,
		Active:     s.Active,
		APIVersion: s.APIVersion,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

func questionPayload(q *store.Question) QuestionPayload {
	return QuestionPayload{
		ID:               q.ID,
		StoreID:          q.StoreID,
		Question:         q.QuestionText,
		Status:           string(q.Status),
		Answer:           q.Answer,
		Confidence:       q.Confidence,
		QueryUsed:        q.QueryUsed,
		DataPoints:       q.DataPoints,
		ProcessingTimeMS: q.ProcessingTimeMS,
		ErrorMessage:     q.ErrorMessage,
		CreatedAt:        q.CreatedAt,
	}
}
