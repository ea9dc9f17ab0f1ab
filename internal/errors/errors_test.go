package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	err := NewStorageError("write failed", io.ErrShortWrite)

	assert.Equal(t, "storage: write failed (caused by: short write)", err.Error())
	assert.ErrorIs(t, err, io.ErrShortWrite)

	plain := NewValidationError("mode is required", nil)
	assert.Equal(t, "validation: mode is required", plain.Error())
}

func TestIsType_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("job 3: %w", NewDecodeError("not an image", nil))

	assert.True(t, IsType(wrapped, ErrorTypeDecode))
	assert.False(t, IsType(wrapped, ErrorTypeValidation))
	assert.False(t, IsType(io.EOF, ErrorTypeDecode))
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad", nil), http.StatusBadRequest},
		{"decode", NewDecodeError("bad", nil), http.StatusUnsupportedMediaType},
		{"processing", NewProcessingError("bad", nil), http.StatusUnprocessableEntity},
		{"network", NewNetworkError("bad", nil), http.StatusBadGateway},
		{"timeout", NewTimeoutError("bad", nil), http.StatusGatewayTimeout},
		{"not found", NewNotFoundError("bad", nil), http.StatusNotFound},
		{"wrapped", fmt.Errorf("ctx: %w", NewNotFoundError("bad", nil)), http.StatusNotFound},
		{"plain", io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetStatusCode(tt.err))
		})
	}
}
