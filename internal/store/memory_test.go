// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

func TestMemoryUpsertCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemoryRegistry()
	stores := reg.Stores()

	created, err := stores.Upsert(ctx, &store.Store{
		ShopDomain:  "acme.myshopify.com",
		AccessToken: "shpat_first",
		Scope:       "read_orders",
		Active:      true,
		APIVersion:  "2024-01",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Active)

	// Same domain again: same record, refreshed credential.
	updated, err := stores.Upsert(ctx, &store.Store{
		ShopDomain:  "acme.myshopify.com",
		AccessToken: "shpat_second",
		Scope:       "read_orders,read_products",
		Active:      true,
		APIVersion:  "2024-01",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "shpat_second", updated.AccessToken)
	assert.Equal(t, "read_orders,read_products", updated.Scope)

	all, err := stores.List(ctx, store.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryUpsertRequiresDomain(t *testing.T) {
	reg := store.NewMemoryRegistry()

	_, err := reg.Stores().Upsert(context.Background(), &store.Store{AccessToken: "shpat_x"})
	require.Error(t, err)
	assert.True(t, ssgerr.IsInvalidInput(err))
}

func TestMemoryGetMissesAreNotFound(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemoryRegistry()

	_, err := reg.Stores().GetByID(ctx, "nope")
	assert.True(t, ssgerr.IsNotFound(err))

	_, err = reg.Stores().GetByDomain(ctx, "nope.myshopify.com")
	assert.True(t, ssgerr.IsNotFound(err))

	_, err = reg.Questions().Get(ctx, "nope")
	assert.True(t, ssgerr.IsNotFound(err))
}

func TestMemorySetActiveKeepsToken(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemoryRegistry()
	stores := reg.Stores()

	_, err := stores.Upsert(ctx, &store.Store{
		ShopDomain:  "acme.myshopify.com",
		AccessToken: "shpat_keep",
		Active:      true,
	})
	require.NoError(t, err)

	require.NoError(t, stores.SetActive(ctx, "acme.myshopify.com", false))

	got, err := stores.GetByDomain(ctx, "acme.myshopify.com")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, "shpat_keep", got.AccessToken)

	err = stores.SetActive(ctx, "ghost.myshopify.com", false)
	assert.True(t, ssgerr.IsNotFound(err))
}

func TestMemoryQuestionLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemoryRegistry()
	questions := reg.Questions()

	q := &store.Question{
		ID:           uuid.NewString(),
		StoreID:      "store-1",
		QuestionText: "What were my top products last month?",
		Status:       store.QuestionStatusPending,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, questions.Create(ctx, q))

	err := questions.Create(ctx, q)
	require.Error(t, err)
	assert.True(t, ssgerr.IsConflict(err))

	q.Status = store.QuestionStatusCompleted
	q.Answer = "Widgets, by a wide margin."
	q.Confidence = 0.92
	q.DataPoints = []map[string]any{{"product": "widget", "units": 412}}
	require.NoError(t, questions.Update(ctx, q))

	got, err := questions.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, store.QuestionStatusCompleted, got.Status)
	assert.Equal(t, "Widgets, by a wide margin.", got.Answer)
	assert.Len(t, got.DataPoints, 1)

	err = questions.Update(ctx, &store.Question{ID: "ghost", StoreID: "store-1", QuestionText: "x"})
	assert.True(t, ssgerr.IsNotFound(err))
}

func TestMemoryListByStoreOrderingAndPagination(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemoryRegistry()
	questions := reg.Questions()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, questions.Create(ctx, &store.Question{
			ID:           fmt.Sprintf("q-%d", i),
			StoreID:      "store-1",
			QuestionText: fmt.Sprintf("question %d", i),
			Status:       store.QuestionStatusPending,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, questions.Create(ctx, &store.Question{
		ID:           "other",
		StoreID:      "store-2",
		QuestionText: "unrelated",
		Status:       store.QuestionStatusPending,
		CreatedAt:    base,
	}))

	// Newest first.
	page, err := questions.ListByStore(ctx, "store-1", store.ListOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "q-4", page[0].ID)
	assert.Equal(t, "q-3", page[1].ID)

	page, err = questions.ListByStore(ctx, "store-1", store.ListOpts{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "q-0", page[0].ID)

	page, err = questions.ListByStore(ctx, "store-1", store.ListOpts{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page)

	n, err := questions.CountByStore(ctx, "store-1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	n, err = questions.CountByStore(ctx, "store-3")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryClonesAreIsolated(t *testing.T) {
	ctx := context.Background()
	reg := store.NewMemoryRegistry()

	created, err := reg.Stores().Upsert(ctx, &store.Store{
		ShopDomain: "acme.myshopify.com",
		Metadata:   map[string]string{"plan": "basic"},
		Active:     true,
	})
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the registry.
	created.Metadata["plan"] = "enterprise"

	got, err := reg.Stores().GetByDomain(ctx, "acme.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, "basic", got.Metadata["plan"])
}

func TestNewRegistryBackendSelection(t *testing.T) {
	reg, err := store.NewRegistry(&store.StorageConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	require.NotNil(t, reg)
	require.NoError(t, reg.Close())

	_, err = store.NewRegistry(&store.StorageConfig{Backend: "etcd"}, nil)
	require.Error(t, err)
	assert.True(t, ssgerr.HasCode(err, ssgerr.CodeStoreBackendUnsupported))
}
