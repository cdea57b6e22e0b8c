// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package store

import (
	"time"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// DefaultAPIVersion is the Shopify Admin API version used when a store
// record does not carry one.
const DefaultAPIVersion = "2024-01"

// Store represents one connected merchant account and its credential.
type Store struct {
	ID          string
	ShopDomain  string
	AccessToken string
	Scope       string
	Active      bool
	APIVersion  string
	Metadata    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Usable reports whether the store can serve analysis requests: it must
// be active and hold a non-empty access token.
func (s *Store) Usable() bool {
	return s.Active && s.AccessToken != ""
}

// --- Question types ---

// QuestionStatus represents the lifecycle state of a question record.
type QuestionStatus string

const (
	QuestionStatusPending    QuestionStatus = "pending"
	QuestionStatusProcessing QuestionStatus = "processing"
	QuestionStatusCompleted  QuestionStatus = "completed"
	QuestionStatusFailed     QuestionStatus = "failed"
)

// Valid reports whether s is one of the known question statuses.
func (s QuestionStatus) Valid() bool {
	switch s {
	case QuestionStatusPending, QuestionStatusProcessing, QuestionStatusCompleted, QuestionStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s QuestionStatus) Terminal() bool {
	return s == QuestionStatusCompleted || s == QuestionStatusFailed
}

// CanTransition reports whether the pending→processing→{completed,failed}
// state machine permits moving from s to next.
func (s QuestionStatus) CanTransition(next QuestionStatus) bool {
	switch s {
	case QuestionStatusPending:
		return next == QuestionStatusProcessing
	case QuestionStatusProcessing:
		return next == QuestionStatusCompleted || next == QuestionStatusFailed
	default:
		return false
	}
}

// Question represents one asked question and its lifecycle through the
// external analysis service.
type Question struct {
	ID               string
	StoreID          string
	QuestionText     string
	Status           QuestionStatus
	Answer           string
	Confidence       float64
	QueryUsed        string
	DataPoints       []map[string]any
	ProcessingTimeMS int64
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Transition moves the question to next, enforcing the checked state
// machine. Terminal states are immutable.
func (q *Question) Transition(next QuestionStatus) error {
	if !next.Valid() {
		return ssgerr.Errorf(ssgerr.CodeQuestionTransitionInvalid, "unknown question status %q", next)
	}
	if !q.Status.CanTransition(next) {
		return ssgerr.Errorf(ssgerr.CodeQuestionTransitionInvalid,
			"question %s cannot transition %s -> %s", q.ID, q.Status, next)
	}
	q.Status = next
	return nil
}

// ListOpts controls pagination for list operations.
type ListOpts struct {
	Limit  int
	Offset int
}
