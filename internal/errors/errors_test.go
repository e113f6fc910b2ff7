package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/justsurfingit/jobly/internal/errors"
)

func TestDomainError_Error(t *testing.T) {
	err := apperrors.NotFound("No job: 7", nil)
	assert.Equal(t, "NOT_FOUND: No job: 7", err.Error())
	assert.NotEmpty(t, err.StackTrace())

	cause := stderrors.New("connection refused")
	wrapped := apperrors.Internal("querying jobs", cause)
	assert.Equal(t, "INTERNAL: querying jobs: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorType
	}{
		{"bad request", apperrors.BadRequest("No data", nil), apperrors.ErrTypeBadRequest},
		{"not found", apperrors.NotFound("No company: c9", nil), apperrors.ErrTypeNotFound},
		{"unauthorized", apperrors.Unauthorized("Unauthorized", nil), apperrors.ErrTypeUnauthorized},
		{"wrapped", fmt.Errorf("handler: %w", apperrors.NotFound("x", nil)), apperrors.ErrTypeNotFound},
		{"foreign error", stderrors.New("boom"), apperrors.ErrTypeInternal},
		{"nil", nil, apperrors.ErrTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.TypeOf(tt.err))
		})
	}
}

func TestIsAndMessage(t *testing.T) {
	err := apperrors.BadRequest("No data", nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrTypeBadRequest))
	assert.False(t, apperrors.Is(err, apperrors.ErrTypeNotFound))
	assert.False(t, apperrors.Is(stderrors.New("plain"), apperrors.ErrTypeBadRequest))

	assert.Equal(t, "No data", apperrors.Message(err, "fallback"))
	assert.Equal(t, "fallback", apperrors.Message(stderrors.New("plain"), "fallback"))
}
