package apperrors

import "errors"

// Sentinel errors returned by the registry, resolver and renderer.
// Callers match them with errors.Is; controllers map them to HTTP statuses.
var (
	// ErrNotFound covers both "never existed" and "deleted" lookups, by id or code.
	ErrNotFound = errors.New("tracking link not found")

	// ErrMissingDestination means a create request supplied neither a usable
	// custom URL nor a resolvable content reference.
	ErrMissingDestination = errors.New("no destination URL or content reference supplied")

	// ErrDuplicateReferralCode means the caller-supplied referral code is
	// already taken by another link. Not retryable; the caller must pick
	// a different value.
	ErrDuplicateReferralCode = errors.New("referral code already in use")

	// ErrInvalidURL means the supplied destination is not an absolute
	// http/https URL.
	ErrInvalidURL = errors.New("destination must be an absolute http or https URL")

	// ErrCodeIssuanceExhausted means no free short code was found within the
	// retry budget. Practically unreachable given the keyspace.
	ErrCodeIssuanceExhausted = errors.New("could not issue a unique short code")

	// ErrCodeTaken is internal to the create path: the insert hit the unique
	// index on code. The registry retries issuance; it never reaches callers.
	ErrCodeTaken = errors.New("short code already taken")

	// ErrRenderUnavailable means the QR renderer failed or is unreachable.
	// Link creation swallows it (the image is rendered lazily later);
	// explicit render requests surface it.
	ErrRenderUnavailable = errors.New("QR renderer unavailable")
)
