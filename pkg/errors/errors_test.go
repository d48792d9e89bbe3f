package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "student not found")
	assert.Equal(t, "student not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestWithDetailsCopiesSlice(t *testing.T) {
	details := []FieldError{{Field: "height", Rule: "lte", Message: "height must be 250 or less"}}
	err := WithDetails(ErrValidation, "invalid student payload", details)
	details[0].Field = "mutated"

	assert.Len(t, err.Details, 1)
	assert.Equal(t, "height", err.Details[0].Field)
	assert.Nil(t, ErrValidation.Details)
}
