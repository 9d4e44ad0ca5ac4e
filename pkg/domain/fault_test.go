package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFault_KindThroughWrapping(t *testing.T) {
	tests := []struct {
		err  error
		kind FaultKind
		is   func(error) bool
	}{
		{NewValidationFault("bad %s", "input"), ValidationFault, IsValidation},
		{NewNotFoundFault("missing"), NotFoundFault, IsNotFound},
		{NewQuotaExceededFault(5, "over"), QuotaExceededFault, IsQuotaExceeded},
		{NewBackendFault(errors.New("down"), "storage"), BackendFault, IsBackend},
		{NewForbiddenFault("not yours"), ForbiddenFault, IsForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.Equal(t, tt.kind, KindOf(wrapped))
			assert.True(t, tt.is(wrapped))
		})
	}
	assert.Equal(t, FaultKind(0), KindOf(errors.New("plain")))
}

func TestFault_Message(t *testing.T) {
	cause := errors.New("connection refused")
	f := NewBackendFault(cause, "storage backend is unavailable")
	assert.Equal(t, "storage backend is unavailable: connection refused", f.Error())
	assert.ErrorIs(t, f, cause)

	q := NewQuotaExceededFault(20, "call minutes limit exceeded")
	assert.Equal(t, int64(20), q.Remaining)
	assert.Equal(t, "call minutes limit exceeded", q.Error())
}
