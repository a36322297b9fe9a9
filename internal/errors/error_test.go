package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_KeepsCause(t *testing.T) {
	// given
	cause := errors.New("connection refused")

	// when
	err := NotFound(fmt.Errorf("failed to list products: %w", cause))

	// then
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, "product not found: failed to list products: connection refused", err.Error())
}

func Test_Error_ResignalReplacesKind(t *testing.T) {
	// given
	cause := errors.New("timeout")
	inner := NotFound(cause)

	// when
	err := BadRequest(fmt.Errorf("update: %w", inner))

	// then
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.NotErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, cause)
}

func Test_Error_WithoutCause(t *testing.T) {
	err := BadRequest(nil)
	assert.ErrorIs(t, err, ErrBadRequest)
	assert.Equal(t, "bad request", err.Error())
}
