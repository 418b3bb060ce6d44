package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrUnsupportedFormat,
		ErrSecurityViolation,
		ErrConversion,
		ErrEmbedding,
		ErrStorage,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestSentinelErrors_WrapAndMatch(t *testing.T) {
	wrapped := fmt.Errorf("extracting archive: %w", ErrSecurityViolation)
	assert.ErrorIs(t, wrapped, ErrSecurityViolation)
	assert.NotErrorIs(t, wrapped, ErrStorage)
}
