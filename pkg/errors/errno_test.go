package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithMessageDoesNotMutateOriginal(t *testing.T) {
	custom := ErrInvalidParam.WithMessage("title is required")

	assert.Equal(t, "title is required", custom.Message)
	assert.Equal(t, "Invalid parameter", ErrInvalidParam.Message)
	assert.Equal(t, ErrInvalidParam.Code, custom.Code)
	assert.Equal(t, http.StatusBadRequest, custom.HTTPStatus())
}

func TestWithCauseUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ErrDatabase.WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsMatchesByCode(t *testing.T) {
	err := ErrPermissionDenied.WithMessage("nope")

	assert.True(t, stderrors.Is(err, ErrPermissionDenied))
	assert.False(t, stderrors.Is(err, ErrUnauthorized))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	e := FromError(ErrCalendarNotFound)
	assert.Same(t, ErrCalendarNotFound, e)

	wrapped := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, wrapped.Code)
	assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPStatus())
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	code := MakeCode(99, 7, 999)
	Register(New(code, http.StatusInternalServerError, "test error"))

	assert.Panics(t, func() {
		Register(New(code, http.StatusInternalServerError, "duplicate"))
	})

	e, ok := Lookup(code)
	require.True(t, ok)
	assert.Equal(t, "test error", e.Message)
}

func TestMakeCode(t *testing.T) {
	assert.Equal(t, 2004003, MakeCode(20, 4, 3))
	assert.Equal(t, 1001, MakeCode(0, 1, 1))
}
