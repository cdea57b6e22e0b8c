// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

// Package store defines the persistent entities of ShopSage — connected
// merchant stores and their question records — together with the storage
// interfaces implemented by the sqlite and memory backends.
package store

import "context"

// StoreRegistry manages connected merchant store records.
type StoreRegistry interface {
	// Upsert finds the store by shop domain or creates it, then applies
	// the credential fields from s. The shop domain is the natural key;
	// at most one row exists per domain. Returns the persisted store.
	Upsert(ctx context.Context, s *Store) (*Store, error)

	GetByID(ctx context.Context, id string) (*Store, error)
	GetByDomain(ctx context.Context, domain string) (*Store, error)
	List(ctx context.Context, opts ListOpts) ([]*Store, error)

	// SetActive flips the active flag without touching the credential,
	// so a disconnected store can later reconnect.
	SetActive(ctx context.Context, domain string, active bool) error
}

// QuestionStore manages question records.
type QuestionStore interface {
	Create(ctx context.Context, q *Question) error
	Get(ctx context.Context, id string) (*Question, error)
	Update(ctx context.Context, q *Question) error

	// ListByStore returns the store's questions ordered by creation time
	// descending, paginated by opts.
	ListByStore(ctx context.Context, storeID string, opts ListOpts) ([]*Question, error)
	CountByStore(ctx context.Context, storeID string) (int64, error)
}

// Registry groups the two stores behind one lifecycle.
type Registry interface {
	Stores() StoreRegistry
	Questions() QuestionStore
	Close() error
}

// TokenCipher seals access tokens before they reach disk and opens them
// on the way back. Implemented by secrets.Cipher.
type TokenCipher interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}
