package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"qr-trackr-be/internal/apperrors"
	"qr-trackr-be/internal/entities"
)

// Constraint names from migrations/00001_create_tracking_links.sql.
const (
	codeConstraint         = "tracking_links_code_key"
	referralCodeConstraint = "tracking_links_referral_code_key"
)

// ListOptions controls paging, sorting and filtering for List.
type ListOptions struct {
	Search  string // Substring match on common_name or code
	SortBy  string // created_at, updated_at or common_name
	SortDir string // asc or desc
	Page    int    // 1-based
	PerPage int
}

// LinkRepository defines the interface for tracking-link database operations
type LinkRepository interface {
	Insert(ctx context.Context, link *entities.TrackingLink) (*entities.TrackingLink, error)
	FindByID(ctx context.Context, id int64) (*entities.TrackingLink, error)
	FindByCode(ctx context.Context, code string) (*entities.TrackingLink, error)
	FindByContentRef(ctx context.Context, ref int64) (*entities.TrackingLink, error)
	ListByContentRef(ctx context.Context, ref int64) ([]*entities.TrackingLink, error)
	UpdateDestination(ctx context.Context, id int64, url string, clearContentRef bool) (*entities.TrackingLink, error)
	UpdateImageURL(ctx context.Context, id int64, imageURL string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, opts ListOptions) ([]*entities.TrackingLink, int, error)
}

type linkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new tracking-link repository
func NewLinkRepository(db *sql.DB) LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = "id, code, destination_url, content_ref, common_name, referral_code, image_url, created_at, updated_at"

func scanLink(row *sql.Row) (*entities.TrackingLink, error) {
	var link entities.TrackingLink
	err := row.Scan(
		&link.ID,
		&link.Code,
		&link.DestinationURL,
		&link.ContentRef,
		&link.CommonName,
		&link.ReferralCode,
		&link.ImageURL,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Insert persists a new tracking link. The unique indexes on code and
// referral_code are the actual uniqueness gate: a violation on the code
// index maps to ErrCodeTaken (the service retries issuance), a violation
// on the referral_code index maps to ErrDuplicateReferralCode (terminal).
func (r *linkRepository) Insert(ctx context.Context, link *entities.TrackingLink) (*entities.TrackingLink, error) {
	query := `
		INSERT INTO tracking_links (code, destination_url, content_ref, common_name, referral_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + linkColumns

	row := r.db.QueryRowContext(ctx, query,
		link.Code,
		link.DestinationURL,
		link.ContentRef,
		link.CommonName,
		link.ReferralCode,
	)

	created, err := scanLink(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case codeConstraint:
				return nil, apperrors.ErrCodeTaken
			case referralCodeConstraint:
				return nil, apperrors.ErrDuplicateReferralCode
			}
		}
		return nil, fmt.Errorf("failed to insert tracking link: %w", err)
	}

	return created, nil
}

// FindByID finds a tracking link by its surrogate id
func (r *linkRepository) FindByID(ctx context.Context, id int64) (*entities.TrackingLink, error) {
	query := "SELECT " + linkColumns + " FROM tracking_links WHERE id = $1"

	link, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tracking link: %w", err)
	}
	return link, nil
}

// FindByCode finds a tracking link by its short code
func (r *linkRepository) FindByCode(ctx context.Context, code string) (*entities.TrackingLink, error) {
	query := "SELECT " + linkColumns + " FROM tracking_links WHERE code = $1"

	link, err := scanLink(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tracking link: %w", err)
	}
	return link, nil
}

// FindByContentRef returns the oldest link for a content reference, which
// is the one GetOrCreateByContentRef treats as canonical for the ref.
func (r *linkRepository) FindByContentRef(ctx context.Context, ref int64) (*entities.TrackingLink, error) {
	query := "SELECT " + linkColumns + ` FROM tracking_links
		WHERE content_ref = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tracking link: %w", err)
	}
	return link, nil
}

// ListByContentRef retrieves all links pointing at a content reference
func (r *linkRepository) ListByContentRef(ctx context.Context, ref int64) ([]*entities.TrackingLink, error) {
	query := "SELECT " + linkColumns + ` FROM tracking_links
		WHERE content_ref = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracking links: %w", err)
	}
	defer rows.Close()

	return collectLinks(rows)
}

// UpdateDestination updates a link's destination URL and bumps updated_at.
// When clearContentRef is true the content linkage is dropped because the
// new destination no longer derives from it.
func (r *linkRepository) UpdateDestination(ctx context.Context, id int64, url string, clearContentRef bool) (*entities.TrackingLink, error) {
	query := `
		UPDATE tracking_links
		SET destination_url = $1,
		    content_ref = CASE WHEN $2 THEN NULL ELSE content_ref END,
		    updated_at = (NOW() AT TIME ZONE 'UTC')
		WHERE id = $3
		RETURNING ` + linkColumns

	link, err := scanLink(r.db.QueryRowContext(ctx, query, url, clearContentRef, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update tracking link: %w", err)
	}
	return link, nil
}

// UpdateImageURL records the rendered QR asset URL for a link
func (r *linkRepository) UpdateImageURL(ctx context.Context, id int64, imageURL string) error {
	query := `
		UPDATE tracking_links
		SET image_url = $1,
		    updated_at = (NOW() AT TIME ZONE 'UTC')
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, imageURL, id)
	if err != nil {
		return fmt.Errorf("failed to update image URL: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a tracking link. The code is never reused: ids and codes
// of deleted rows stay burned because codes are random, not sequential.
func (r *linkRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tracking_links WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete tracking link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Sortable columns for List; anything else falls back to created_at.
var sortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"common_name": "common_name",
}

// List retrieves a page of links with the total count of matching rows
func (r *linkRepository) List(ctx context.Context, opts ListOptions) ([]*entities.TrackingLink, int, error) {
	sortBy, ok := sortColumns[opts.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortDir := "DESC"
	if opts.SortDir == "asc" {
		sortDir = "ASC"
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 20
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM tracking_links
		WHERE ($1 = '' OR common_name ILIKE '%%' || $1 || '%%' OR code ILIKE '%%' || $1 || '%%')
		ORDER BY %s %s, id %s
		LIMIT $2 OFFSET $3
	`, linkColumns, sortBy, sortDir, sortDir)

	rows, err := r.db.QueryContext(ctx, query, opts.Search, opts.PerPage, (opts.Page-1)*opts.PerPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tracking links: %w", err)
	}
	defer rows.Close()

	var links []*entities.TrackingLink
	total := 0
	for rows.Next() {
		var link entities.TrackingLink
		err := rows.Scan(
			&link.ID,
			&link.Code,
			&link.DestinationURL,
			&link.ContentRef,
			&link.CommonName,
			&link.ReferralCode,
			&link.ImageURL,
			&link.CreatedAt,
			&link.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan tracking link: %w", err)
		}
		links = append(links, &link)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tracking links: %w", err)
	}

	return links, total, nil
}

func collectLinks(rows *sql.Rows) ([]*entities.TrackingLink, error) {
	var links []*entities.TrackingLink
	for rows.Next() {
		var link entities.TrackingLink
		err := rows.Scan(
			&link.ID,
			&link.Code,
			&link.DestinationURL,
			&link.ContentRef,
			&link.CommonName,
			&link.ReferralCode,
			&link.ImageURL,
			&link.CreatedAt,
			&link.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracking link: %w", err)
		}
		links = append(links, &link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracking links: %w", err)
	}

	return links, nil
}
