package resilience

import (
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("something broke"), false},
		{"marked transient", NewTransientError(errors.New("overloaded"), 503), true},
		{"wrapped transient", fmt.Errorf("stage: %w", NewTransientError(errors.New("x"), 0)), true},
		{"econnreset", syscall.ECONNRESET, true},
		{"econnrefused wrapped", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"reset string pattern", errors.New("read tcp: connection reset by peer"), true},
		{"refused string pattern", errors.New("dial tcp: connection refused"), true},
		{"dns string pattern", errors.New("lookup api.example: no such host"), true},
		{"io timeout string", errors.New("read: i/o timeout"), true},
		{"unrelated remote error", errors.New("invalid request body"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	transient := []int{http.StatusRequestTimeout, http.StatusTooManyRequests, 500, 502, 503, 504}
	for _, code := range transient {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}

	permanent := []int{200, 201, 400, 401, 403, 404, 422}
	for _, code := range permanent {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	te := NewTransientError(base, 502)

	assert.ErrorIs(t, te, base)
	assert.Equal(t, "boom", te.Error())
	assert.Equal(t, 502, te.StatusCode)
}
