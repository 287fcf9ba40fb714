// internal/pkg/apperrors/errors_test.go
package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/threadline/storefront-backend/internal/pkg/apperrors"
)

func TestKindClassification(t *testing.T) {
	err := apperrors.NotAuthenticated("sign in required")

	assert.True(t, apperrors.IsKind(err, apperrors.KindNotAuthenticated))
	assert.False(t, apperrors.IsKind(err, apperrors.KindValidationFailed))
	assert.Equal(t, "sign in required", err.Error())
}

func TestRemoteRejectedPreservesCause(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := apperrors.RemoteRejected("failed to create profile", cause)

	assert.True(t, apperrors.IsKind(err, apperrors.KindRemoteRejected))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "duplicate key value")
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("order submission: %w", apperrors.PartialWriteWindow("order header persisted without lines", errors.New("insert failed")))

	assert.True(t, apperrors.IsKind(err, apperrors.KindPartialWriteWindow))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperrors.NotAuthenticated("no identity"), http.StatusUnauthorized},
		{apperrors.ValidationFailed("quantity must be positive"), http.StatusBadRequest},
		{apperrors.NotFound("order not found"), http.StatusNotFound},
		{apperrors.Forbidden("admin access required"), http.StatusForbidden},
		{apperrors.RemoteRejected("store declined", errors.New("boom")), http.StatusUnprocessableEntity},
		{apperrors.PartialWriteWindow("orphaned header", errors.New("boom")), http.StatusConflict},
		{errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, apperrors.HTTPStatus(tc.err))
	}
}
