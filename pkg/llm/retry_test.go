package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{name: "success first try", errs: []error{nil}, wantCalls: 1},
		{name: "transient then success", errs: []error{errors.New("connection reset"), nil}, wantCalls: 2},
		{
			name:      "retries exhausted",
			errs:      []error{&StatusError{StatusCode: 503}, &StatusError{StatusCode: 503}, &StatusError{StatusCode: 503}},
			wantCalls: 3,
			wantErr:   true,
		},
		{name: "permanent status", errs: []error{&StatusError{StatusCode: http.StatusBadRequest}}, wantCalls: 1, wantErr: true},
		{name: "deadline not retried", errs: []error{context.DeadlineExceeded}, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			out, err := Retry(context.Background(), fastRetry(), func() (string, error) {
				e := tt.errs[calls]
				calls++
				if e != nil {
					return "", e
				}
				return "ok", nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "ok", out)
			}
		})
	}
}

func TestCalculateBackoffIsCapped(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second}

	assert.Equal(t, time.Second, calculateBackoff(0, cfg))
	assert.Equal(t, 2*time.Second, calculateBackoff(1, cfg))
	assert.Equal(t, 3*time.Second, calculateBackoff(5, cfg))
}
