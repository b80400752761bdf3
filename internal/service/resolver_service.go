package service

import (
	"context"
	"errors"

	"qr-trackr-be/internal/apperrors"
	"qr-trackr-be/internal/cache"
	"qr-trackr-be/internal/content"
	"qr-trackr-be/internal/logger"
	"qr-trackr-be/internal/repository"
)

// ResolverService answers the public scan path: code in, destination out.
// It never mutates link state; access recording lives outside this core.
type ResolverService interface {
	Resolve(ctx context.Context, code string) (string, error)
}

type resolverService struct {
	repo       repository.LinkRepository
	cache      cache.Cache
	contentSvc content.Resolver
}

type resolvedEntry struct {
	DestinationURL string `json:"destination_url"`
}

// NewResolverService creates a new redirect resolver. cacheClient may be
// nil, in which case every scan hits the database.
func NewResolverService(repo repository.LinkRepository, cacheClient cache.Cache, contentSvc content.Resolver) ResolverService {
	return &resolverService{
		repo:       repo,
		cache:      cacheClient,
		contentSvc: contentSvc,
	}
}

// Resolve looks up a scanned code and returns the current destination URL.
// Content-backed links re-derive their canonical URL on each cache miss so
// a moved post keeps redirecting to its current address; if the content
// service is unreachable the stored destination keeps scans working.
func (s *resolverService) Resolve(ctx context.Context, code string) (string, error) {
	if s.cache != nil {
		var entry resolvedEntry
		if err := s.cache.GetJSON(ctx, resolveKeyPrefix+code, &entry); err == nil && entry.DestinationURL != "" {
			return entry.DestinationURL, nil
		}
	}

	link, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}

	destination := link.DestinationURL
	if link.ContentRef != nil {
		canonical, err := s.contentSvc.ResolveContentRef(ctx, *link.ContentRef)
		switch {
		case err == nil && validateDestination(canonical) == nil:
			destination = canonical
		case errors.Is(err, apperrors.ErrNotFound):
			// Content gone; the stored destination is the best we have.
		case err != nil:
			logger.Warn().Err(err).Str("code", code).Msg("content service unreachable, using stored destination")
		}
	}

	if s.cache != nil {
		entry := resolvedEntry{DestinationURL: destination}
		if err := s.cache.SetJSON(ctx, resolveKeyPrefix+code, entry, linkCacheTTL); err != nil {
			logger.Warn().Err(err).Str("code", code).Msg("failed to populate resolve cache")
		}
	}

	return destination, nil
}
