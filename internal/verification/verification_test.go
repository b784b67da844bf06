package verification

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petition/internal/platform/config"
)

func newVerifier(t *testing.T, handler http.HandlerFunc) *Turnstile {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewTurnstile(config.VerificationConfig{
		SecretKey: "test-secret",
		VerifyURL: srv.URL,
		Timeout:   2 * time.Second,
	}, slog.Default())
}

func TestTurnstileVerify(t *testing.T) {
	t.Run("accepts valid token", func(t *testing.T) {
		v := newVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "test-secret", r.PostForm.Get("secret"))
			assert.Equal(t, "good-token", r.PostForm.Get("response"))
			w.Write([]byte(`{"success":true}`))
		})

		assert.NoError(t, v.Verify(context.Background(), "good-token"))
	})

	t.Run("rejected token yields ErrTokenRejected", func(t *testing.T) {
		v := newVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
		})

		err := v.Verify(context.Background(), "bad-token")
		assert.ErrorIs(t, err, ErrTokenRejected)
	})

	t.Run("server error is not a rejection", func(t *testing.T) {
		v := newVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		err := v.Verify(context.Background(), "any-token")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTokenRejected)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		v := newVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			w.Write([]byte(`{"success":true}`))
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := v.Verify(ctx, "any-token")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrTokenRejected)
	})
}
