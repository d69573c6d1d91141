package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"petitshop/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[apperrors.Kind]int{
		apperrors.KindBadRequest:   http.StatusBadRequest,
		apperrors.KindUnauthorized: http.StatusUnauthorized,
		apperrors.KindForbidden:    http.StatusForbidden,
		apperrors.KindConflict:     http.StatusConflict,
		apperrors.KindNotFound:     http.StatusNotFound,
		apperrors.KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestKindOf_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading page: %w", apperrors.NotFound("page %s not found", "p1"))

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, "page p1 not found", apperrors.Message(err))
}

func TestInternal(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.Internal(cause, "failed to save order")

	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save order", apperrors.Message(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindOf_PlainError(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	assert.False(t, apperrors.Is(nil, apperrors.KindInternal))
	assert.Equal(t, "boom", apperrors.Message(err))
}
