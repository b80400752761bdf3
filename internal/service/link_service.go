package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"qr-trackr-be/internal/apperrors"
	"qr-trackr-be/internal/cache"
	"qr-trackr-be/internal/content"
	"qr-trackr-be/internal/entities"
	"qr-trackr-be/internal/logger"
	"qr-trackr-be/internal/models"
	"qr-trackr-be/internal/qrimage"
	"qr-trackr-be/internal/repository"
)

const (
	resolveKeyPrefix = "link:resolve:"
	codeKeyPrefix    = "link:code:"
	listKeyPrefix    = "links:list:"
	listVersionKey   = "links:list:ver"

	linkCacheTTL = 5 * time.Minute

	// How many times Create re-issues a code after losing the unique-index
	// race on insert. Distinct from the issuer's own candidate budget.
	maxInsertAttempts = 5
)

// ImageRenderer is the slice of the QR renderer the registry needs.
type ImageRenderer interface {
	RenderOrFetch(ctx context.Context, content string, opts qrimage.Options) (string, error)
	RenderFresh(ctx context.Context, content string, opts qrimage.Options) (string, error)
	DeleteAssetByURL(ctx context.Context, assetURL string) error
}

// LinkService is the tracking-link registry: the single writer for
// tracking_links rows and the owner of their cache keys.
type LinkService interface {
	Create(ctx context.Context, req *models.CreateLinkRequest) (*entities.TrackingLink, error)
	GetOrCreateByContentRef(ctx context.Context, ref int64) (*entities.TrackingLink, error)
	UpdateDestination(ctx context.Context, id int64, destination string) (*entities.TrackingLink, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*entities.TrackingLink, error)
	GetByCode(ctx context.Context, code string) (*entities.TrackingLink, error)
	ListForContentRef(ctx context.Context, ref int64) ([]*entities.TrackingLink, error)
	ListLinks(ctx context.Context, opts repository.ListOptions) ([]*entities.TrackingLink, int, error)
	RegenerateImage(ctx context.Context, id int64) (string, error)
	EnsureImage(ctx context.Context, id int64) (string, error)
}

type linkService struct {
	repo       repository.LinkRepository
	cache      cache.Cache
	issuer     *CodeIssuer
	contentSvc content.Resolver
	renderer   ImageRenderer
	baseURL    string // Public scan base; the QR encodes baseURL/<code>
	renderOpts qrimage.Options
}

// NewLinkService creates a new link registry service. cacheClient may be
// nil, in which case reads go straight to the database.
func NewLinkService(
	repo repository.LinkRepository,
	cacheClient cache.Cache,
	issuer *CodeIssuer,
	contentSvc content.Resolver,
	renderer ImageRenderer,
	baseURL string,
	renderOpts qrimage.Options,
) LinkService {
	return &linkService{
		repo:       repo,
		cache:      cacheClient,
		issuer:     issuer,
		contentSvc: contentSvc,
		renderer:   renderer,
		baseURL:    strings.TrimRight(baseURL, "/"),
		renderOpts: renderOpts,
	}
}

// scanURL is the content every QR image for the link encodes.
func (s *linkService) scanURL(code string) string {
	return s.baseURL + "/" + code
}

// validateDestination checks the URL is absolute with an explicit
// http/https scheme.
func validateDestination(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return apperrors.ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.ErrInvalidURL
	}
	return nil
}

// Create makes a new tracking link. A supplied custom URL takes precedence
// over a content reference; when both are present the content linkage is
// dropped so the row records how its destination was actually determined.
func (s *linkService) Create(ctx context.Context, req *models.CreateLinkRequest) (*entities.TrackingLink, error) {
	destination := strings.TrimSpace(req.CustomURL)
	contentRef := req.ContentRef

	if destination != "" {
		if err := validateDestination(destination); err != nil {
			return nil, err
		}
		contentRef = nil
	} else if contentRef != nil {
		resolved, err := s.contentSvc.ResolveContentRef(ctx, *contentRef)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrMissingDestination
			}
			return nil, fmt.Errorf("failed to resolve content reference: %w", err)
		}
		// A misbehaving content service must not smuggle an unusable URL
		// into the registry.
		if err := validateDestination(resolved); err != nil {
			return nil, fmt.Errorf("content service returned unusable canonical URL %q: %w", resolved, err)
		}
		destination = resolved
	}

	if destination == "" {
		return nil, apperrors.ErrMissingDestination
	}

	var referralCode *string
	if rc := strings.TrimSpace(req.ReferralCode); rc != "" {
		referralCode = &rc
	}

	link, err := s.insertWithFreshCodes(ctx, &entities.TrackingLink{
		DestinationURL: destination,
		ContentRef:     contentRef,
		CommonName:     strings.TrimSpace(req.CommonName),
		ReferralCode:   referralCode,
	})
	if err != nil {
		return nil, err
	}

	// Render the QR image eagerly but never let a renderer outage block
	// creation; the image is rendered lazily on first display instead.
	imageURL, err := s.renderer.RenderOrFetch(ctx, s.scanURL(link.Code), s.renderOpts)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("code", link.Code).
			Msg("QR render deferred: renderer unavailable at link creation")
	} else {
		if err := s.repo.UpdateImageURL(ctx, link.ID, imageURL); err != nil {
			return nil, err
		}
		link.ImageURL = imageURL
	}

	if err := s.invalidate(ctx, link.Code); err != nil {
		return nil, err
	}

	return link, nil
}

// insertWithFreshCodes issues a code and inserts, re-issuing when the
// insert loses the unique-index race on code. A referral-code violation is
// surfaced immediately: that value is caller-supplied and retrying cannot
// fix it.
func (s *linkService) insertWithFreshCodes(ctx context.Context, link *entities.TrackingLink) (*entities.TrackingLink, error) {
	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		code, err := s.issuer.IssueCode(ctx)
		if err != nil {
			return nil, err
		}
		link.Code = code

		created, err := s.repo.Insert(ctx, link)
		if err == nil {
			return created, nil
		}
		if errors.Is(err, apperrors.ErrCodeTaken) {
			continue
		}
		return nil, err
	}
	return nil, apperrors.ErrCodeIssuanceExhausted
}

// GetOrCreateByContentRef returns the existing link for a content
// reference, or creates one resolving the reference to its canonical URL.
// Calling it repeatedly for the same reference yields the same link.
func (s *linkService) GetOrCreateByContentRef(ctx context.Context, ref int64) (*entities.TrackingLink, error) {
	link, err := s.repo.FindByContentRef(ctx, ref)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	return s.Create(ctx, &models.CreateLinkRequest{ContentRef: &ref})
}

// UpdateDestination changes where a link redirects. The content linkage is
// cleared because the new destination is no longer derived from content.
func (s *linkService) UpdateDestination(ctx context.Context, id int64, destination string) (*entities.TrackingLink, error) {
	destination = strings.TrimSpace(destination)
	if err := validateDestination(destination); err != nil {
		return nil, err
	}

	link, err := s.repo.UpdateDestination(ctx, id, destination, true)
	if err != nil {
		return nil, err
	}

	if err := s.invalidate(ctx, link.Code); err != nil {
		return nil, err
	}

	return link, nil
}

// Delete removes a link. Its code stays burned; the cached QR asset is
// cleaned up best-effort.
func (s *linkService) Delete(ctx context.Context, id int64) error {
	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.invalidate(ctx, link.Code); err != nil {
		return err
	}

	// The recorded image_url names the asset that actually exists, even if
	// the render settings have changed since it was written.
	if err := s.renderer.DeleteAssetByURL(ctx, link.ImageURL); err != nil {
		logger.Warn().Err(err).Str("code", link.Code).Msg("failed to delete QR asset for removed link")
	}

	return nil
}

// GetByID finds a tracking link by id
func (s *linkService) GetByID(ctx context.Context, id int64) (*entities.TrackingLink, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByCode finds a tracking link by short code, read through the cache.
func (s *linkService) GetByCode(ctx context.Context, code string) (*entities.TrackingLink, error) {
	if s.cache != nil {
		var cached entities.TrackingLink
		if err := s.cache.GetJSON(ctx, codeKeyPrefix+code, &cached); err == nil {
			return &cached, nil
		}
	}

	link, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, codeKeyPrefix+code, link, linkCacheTTL); err != nil {
			logger.Warn().Err(err).Str("code", code).Msg("failed to populate link cache")
		}
	}

	return link, nil
}

// ListForContentRef retrieves all links pointing at a content reference
func (s *linkService) ListForContentRef(ctx context.Context, ref int64) ([]*entities.TrackingLink, error) {
	return s.repo.ListByContentRef(ctx, ref)
}

// cachedLinkList is the cache shape for one list page.
type cachedLinkList struct {
	Links []*entities.TrackingLink `json:"links"`
	Total int                      `json:"total"`
}

// ListLinks retrieves a page of links with the total matching count.
// Pages are cached under a key embedding the list version, so the version
// bump in invalidate orphans every cached page at once; orphaned pages
// age out via TTL.
func (s *linkService) ListLinks(ctx context.Context, opts repository.ListOptions) ([]*entities.TrackingLink, int, error) {
	// Normalize here so equivalent requests share a cache key.
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 {
		opts.PerPage = 20
	}

	var key string
	if s.cache != nil {
		ver, err := s.cache.Get(ctx, listVersionKey)
		if err != nil {
			ver = "0"
		}
		key = fmt.Sprintf("%s%s:%s|%s|%s|%d|%d",
			listKeyPrefix, ver, opts.Search, opts.SortBy, opts.SortDir, opts.Page, opts.PerPage)

		var cached cachedLinkList
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached.Links, cached.Total, nil
		}
	}

	links, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, cachedLinkList{Links: links, Total: total}, linkCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("failed to populate list cache")
		}
	}

	return links, total, nil
}

// RegenerateImage deletes the cached QR asset for a link and renders it
// again unconditionally.
func (s *linkService) RegenerateImage(ctx context.Context, id int64) (string, error) {
	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	imageURL, err := s.renderer.RenderFresh(ctx, s.scanURL(link.Code), s.renderOpts)
	if err != nil {
		return "", err
	}

	// If render settings changed since the last render, the old asset
	// lives at a different fingerprint; clean it up.
	if link.ImageURL != "" && link.ImageURL != imageURL {
		if err := s.renderer.DeleteAssetByURL(ctx, link.ImageURL); err != nil {
			logger.Warn().Err(err).Str("code", link.Code).Msg("failed to delete superseded QR asset")
		}
	}

	if err := s.repo.UpdateImageURL(ctx, link.ID, imageURL); err != nil {
		return "", err
	}

	if err := s.invalidate(ctx, link.Code); err != nil {
		return "", err
	}

	return imageURL, nil
}

// EnsureImage returns the link's QR asset URL, rendering it now if the
// creation-time render was deferred.
func (s *linkService) EnsureImage(ctx context.Context, id int64) (string, error) {
	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	imageURL, err := s.renderer.RenderOrFetch(ctx, s.scanURL(link.Code), s.renderOpts)
	if err != nil {
		return "", err
	}

	if imageURL != link.ImageURL {
		if err := s.repo.UpdateImageURL(ctx, link.ID, imageURL); err != nil {
			return "", err
		}
		if err := s.invalidate(ctx, link.Code); err != nil {
			return "", err
		}
	}

	return imageURL, nil
}

// invalidate drops the per-code cache entries and bumps the list version.
// It runs synchronously inside every write so no caller can observe a
// stale entry after the write returns.
func (s *linkService) invalidate(ctx context.Context, code string) error {
	if s.cache == nil {
		return nil
	}

	if err := s.cache.Delete(ctx, resolveKeyPrefix+code, codeKeyPrefix+code); err != nil {
		return fmt.Errorf("failed to invalidate link cache: %w", err)
	}
	if _, err := s.cache.Incr(ctx, listVersionKey); err != nil {
		return fmt.Errorf("failed to bump list cache version: %w", err)
	}
	return nil
}
