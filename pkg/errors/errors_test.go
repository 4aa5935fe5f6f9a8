package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClonedSentinelStillMatches(t *testing.T) {
	err := fmt.Errorf("load: %w", Clone(ErrUpstream, "payments endpoint returned 503"))
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(err, ErrInternal))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	typed := FromError(fmt.Errorf("wrapped: %w", ErrSuperseded))
	assert.Equal(t, http.StatusConflict, typed.Status)

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.EqualError(t, plain, "internal server error: boom")
}
