package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeValidation, "domain is required")
	assert.True(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(errors.New("plain"), CodeValidation))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUpstreamUnavailable, "registrar unreachable")
	wrapped := fmt.Errorf("checking domain: %w", err)

	assert.True(t, HasCode(wrapped, CodeUpstreamUnavailable))
	assert.ErrorIs(t, wrapped, cause)
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "no such user")))
}

func TestMessageOfHidesNonCodedErrors(t *testing.T) {
	assert.Equal(t, "", MessageOf(errors.New("sql: driver bug")))
	assert.Equal(t, "bad domain", MessageOf(New(CodeValidation, "bad domain")))
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Wrap(errors.New("timeout"), CodeUpstreamUnavailable, "registrar check failed")
	assert.Contains(t, err.Error(), "upstream_unavailable")
	assert.Contains(t, err.Error(), "timeout")
}
