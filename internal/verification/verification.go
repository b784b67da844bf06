// Package verification talks to the challenge-response human-verification
// collaborator. The service only ever needs a yes/no answer for a client
// token, so the interface stays minimal and test doubles stay trivial.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"petition/internal/platform/config"
)

// ErrTokenRejected means the collaborator evaluated the token and said no.
// Any other error from Verify means the collaborator could not be consulted.
var ErrTokenRejected = errors.New("verification token rejected")

// Verifier confirms that a submission originated from a human.
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

const defaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Turnstile verifies tokens against Cloudflare Turnstile's siteverify
// endpoint.
type Turnstile struct {
	secretKey string
	verifyURL string
	client    *http.Client
	logger    *slog.Logger
}

// NewTurnstile constructs a Turnstile verifier. The configured timeout bounds
// every verification call so an unresponsive collaborator yields an error
// instead of hanging the request.
func NewTurnstile(cfg config.VerificationConfig, logger *slog.Logger) *Turnstile {
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Turnstile{
		secretKey: cfg.SecretKey,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify submits the secret and client token to the collaborator. Returns
// ErrTokenRejected when the token fails evaluation and a wrapped transport
// error when the collaborator is unreachable or answers garbage.
func (t *Turnstile) Verify(ctx context.Context, token string) error {
	form := url.Values{
		"secret":   {t.secretKey},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("call siteverify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var result siteverifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode siteverify response: %w", err)
	}

	if !result.Success {
		t.logger.WarnContext(ctx, "verification token rejected",
			"error_codes", result.ErrorCodes,
		)
		return ErrTokenRejected
	}
	return nil
}
