package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qr-trackr-be/internal/apperrors"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8}$`)

func TestIssueCodeFormat(t *testing.T) {
	issuer := NewCodeIssuer(newFakeRepo())

	for i := 0; i < 20; i++ {
		code, err := issuer.IssueCode(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
	}
}

func TestIssueCodeExhaustsAfterBoundedAttempts(t *testing.T) {
	repo := newFakeRepo()
	repo.allCodesTaken = true
	issuer := NewCodeIssuer(repo)

	_, err := issuer.IssueCode(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrCodeIssuanceExhausted)
}
