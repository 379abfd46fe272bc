package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := New(KindUserNotFound, "user %d not found", 999)

	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.False(t, errors.Is(err, ErrAccessDenied))
	assert.Equal(t, "user 999 not found", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"sentinel", ErrInvalidToken, KindInvalidToken},
		{"wrapped", fmt.Errorf("login: %w", ErrEncoderFail), KindEncoderFail},
		{"plain", errors.New("db down"), KindInternal},
		{"nil", nil, KindInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestError_EmptyMessageFallsBackToKind(t *testing.T) {
	err := &Error{Kind: KindAccessDenied}
	assert.Equal(t, "access_denied", err.Error())
}
