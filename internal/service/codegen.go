package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"qr-trackr-be/internal/apperrors"
	"qr-trackr-be/internal/repository"
)

const (
	codeLength       = 8
	maxIssueAttempts = 5
)

// CodeIssuer produces short, URL-safe identifiers that are free at the
// time of the check. The check is an optimization: the unique index on
// tracking_links.code is the real gate, and the registry retries issuance
// if the insert loses that race.
type CodeIssuer struct {
	repo repository.LinkRepository
}

// NewCodeIssuer creates a new code issuer
func NewCodeIssuer(repo repository.LinkRepository) *CodeIssuer {
	return &CodeIssuer{repo: repo}
}

// IssueCode returns a candidate code not currently present in the
// registry. Fails with ErrCodeIssuanceExhausted after maxIssueAttempts
// collisions, which is practically unreachable with a 48-bit keyspace.
func (g *CodeIssuer) IssueCode(ctx context.Context) (string, error) {
	var code string

	backoff := retry.WithMaxRetries(maxIssueAttempts-1, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		candidate, err := randomCode()
		if err != nil {
			return err
		}

		_, err = g.repo.FindByCode(ctx, candidate)
		if err == nil {
			// Collision, try a fresh candidate
			return retry.RetryableError(apperrors.ErrCodeTaken)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		code = candidate
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrCodeTaken) {
			return "", apperrors.ErrCodeIssuanceExhausted
		}
		return "", err
	}

	return code, nil
}

// randomCode generates a random 8-character URL-safe code
func randomCode() (string, error) {
	// 6 bytes of entropy encode to exactly 8 base64 characters
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes)[:codeLength], nil
}
