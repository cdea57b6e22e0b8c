// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncludesCodeAndFields(t *testing.T) {
	err := ssgerr.New(
		ssgerr.CodeStoreNotFound,
		"store missing",
		ssgerr.FieldShop("shop1.myshopify.com"),
		ssgerr.Field("attempt", 1),
	)

	require.Error(t, err)
	assert.Equal(t, ssgerr.CodeStoreNotFound, ssgerr.CodeOf(err))
	assert.True(t, ssgerr.HasCode(err, ssgerr.CodeStoreNotFound))

	fields := ssgerr.FieldsOf(err)
	assert.Equal(t, "shop1.myshopify.com", fields["shop_domain"])
	assert.Equal(t, 1, fields["attempt"])
}

func TestErrorfWrapsInnerError(t *testing.T) {
	inner := stderrors.New("disk full")
	err := ssgerr.Errorf(ssgerr.CodeStoreDatabaseFailure, "write failed: %w", inner)
	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ssgerr.CodeStoreDatabaseFailure, ssgerr.CodeOf(err))
}

func TestWrapPreservesWrappedErrorAndCode(t *testing.T) {
	root := stderrors.New("record missing")
	err := ssgerr.Wrap(root, ssgerr.CodeQuestionNotFound, "loading question",
		ssgerr.FieldQuestionID("q-42"))

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.True(t, ssgerr.IsNotFound(err))
	assert.Equal(t, "q-42", ssgerr.FieldsOf(err)["question_id"])
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, ssgerr.Wrap(nil, ssgerr.CodeServerInternalFailure, "ignored"))
	assert.NoError(t, ssgerr.Wrapf(nil, ssgerr.CodeServerInternalFailure, "ignored %s", "arg"))
}

func TestClassifiers(t *testing.T) {
	assert.True(t, ssgerr.IsNotFound(ssgerr.New(ssgerr.CodeStoreNotFound, "x")))
	assert.True(t, ssgerr.IsInvalidInput(ssgerr.New(ssgerr.CodeOAuthShopInvalid, "x")))
	assert.True(t, ssgerr.IsInvalidInput(ssgerr.New(ssgerr.CodeAgentResponseInvalid, "x")))
	assert.True(t, ssgerr.IsUnauthorized(ssgerr.New(ssgerr.CodeOAuthCallbackDenied, "x")))
	assert.True(t, ssgerr.IsTimeout(ssgerr.New(ssgerr.CodeAgentUpstreamTimeout, "x")))
	assert.True(t, ssgerr.IsUpstreamFailure(ssgerr.New(ssgerr.CodeAgentUpstreamFailure, "x")))
	assert.True(t, ssgerr.IsConflict(ssgerr.New(ssgerr.CodeStoreConflict, "x")))
	assert.True(t, ssgerr.IsProcessingFailure(ssgerr.New(ssgerr.CodeQuestionProcessingFailure, "x")))

	assert.False(t, ssgerr.IsNotFound(nil))
	assert.False(t, ssgerr.IsNotFound(stderrors.New("plain")))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ssgerr.New(ssgerr.CodeStoreNotFound, "x"), http.StatusNotFound},
		{"invalid input", ssgerr.New(ssgerr.CodeOAuthShopInvalid, "x"), http.StatusBadRequest},
		{"oauth denied", ssgerr.New(ssgerr.CodeOAuthCallbackDenied, "x"), http.StatusUnauthorized},
		{"processing failure", ssgerr.New(ssgerr.CodeQuestionProcessingFailure, "x"), http.StatusUnprocessableEntity},
		{"upstream timeout", ssgerr.New(ssgerr.CodeAgentUpstreamTimeout, "x"), http.StatusGatewayTimeout},
		{"upstream failure", ssgerr.New(ssgerr.CodeAgentUpstreamFailure, "x"), http.StatusBadGateway},
		{"not implemented", ssgerr.New(ssgerr.CodeServerNotImplemented, "x"), http.StatusNotImplemented},
		{"conflict", ssgerr.New(ssgerr.CodeStoreConflict, "x"), http.StatusConflict},
		{"fallback", stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ssgerr.HTTPStatus(tc.err))
		})
	}
}

func TestJoinCombinesErrors(t *testing.T) {
	a := stderrors.New("first")
	b := stderrors.New("second")
	joined := ssgerr.Join(a, b)

	require.Error(t, joined)
	assert.ErrorIs(t, joined, a)
	assert.ErrorIs(t, joined, b)
	assert.Equal(t, ssgerr.CodeServerInternalFailure, ssgerr.CodeOf(joined))
}
