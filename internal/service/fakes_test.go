package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"qr-trackr-be/internal/apperrors"
	"qr-trackr-be/internal/cache"
	"qr-trackr-be/internal/entities"
	"qr-trackr-be/internal/qrimage"
	"qr-trackr-be/internal/repository"
)

// fakeRepo is an in-memory LinkRepository that enforces the same unique
// constraints the Postgres indexes do.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*entities.TrackingLink

	// insertCodeCollisions makes the next N inserts fail with ErrCodeTaken
	// regardless of the candidate, simulating a lost unique-index race.
	insertCodeCollisions int

	// allCodesTaken makes FindByCode report every candidate as existing.
	allCodesTaken bool

	// listCalls counts trips List makes to the backing store.
	listCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]*entities.TrackingLink{}}
}

func (r *fakeRepo) clone(l *entities.TrackingLink) *entities.TrackingLink {
	c := *l
	return &c
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *fakeRepo) Insert(_ context.Context, link *entities.TrackingLink) (*entities.TrackingLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertCodeCollisions > 0 {
		r.insertCodeCollisions--
		return nil, apperrors.ErrCodeTaken
	}

	for _, row := range r.rows {
		if row.Code == link.Code {
			return nil, apperrors.ErrCodeTaken
		}
		if row.ReferralCode != nil && link.ReferralCode != nil && *row.ReferralCode == *link.ReferralCode {
			return nil, apperrors.ErrDuplicateReferralCode
		}
	}

	r.nextID++
	created := r.clone(link)
	created.ID = r.nextID
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	r.rows[created.ID] = created
	return r.clone(created), nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*entities.TrackingLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		return r.clone(row), nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeRepo) FindByCode(_ context.Context, code string) (*entities.TrackingLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.allCodesTaken {
		return &entities.TrackingLink{Code: code}, nil
	}
	for _, row := range r.rows {
		if row.Code == code {
			return r.clone(row), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeRepo) FindByContentRef(_ context.Context, ref int64) (*entities.TrackingLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest *entities.TrackingLink
	for _, row := range r.rows {
		if row.ContentRef == nil || *row.ContentRef != ref {
			continue
		}
		if oldest == nil || row.ID < oldest.ID {
			oldest = row
		}
	}
	if oldest == nil {
		return nil, apperrors.ErrNotFound
	}
	return r.clone(oldest), nil
}

func (r *fakeRepo) ListByContentRef(_ context.Context, ref int64) ([]*entities.TrackingLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TrackingLink
	for _, row := range r.rows {
		if row.ContentRef != nil && *row.ContentRef == ref {
			out = append(out, r.clone(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeRepo) UpdateDestination(_ context.Context, id int64, url string, clearContentRef bool) (*entities.TrackingLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	row.DestinationURL = url
	if clearContentRef {
		row.ContentRef = nil
	}
	row.UpdatedAt = time.Now().UTC()
	return r.clone(row), nil
}

func (r *fakeRepo) UpdateImageURL(_ context.Context, id int64, imageURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.ImageURL = imageURL
	row.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, opts repository.ListOptions) ([]*entities.TrackingLink, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []*entities.TrackingLink
	for _, row := range r.rows {
		if opts.Search == "" || strings.Contains(row.CommonName, opts.Search) || strings.Contains(row.Code, opts.Search) {
			out = append(out, r.clone(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

var _ repository.LinkRepository = (*fakeRepo)(nil)

// fakeCache is an in-memory cache.Cache without TTL expiry.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return "", cache.ErrCacheMiss
}

func (c *fakeCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] += "+"
	return int64(len(c.data[key])), nil
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, string(data), ttl)
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

var _ cache.Cache = (*fakeCache)(nil)

// fakeContent resolves refs from a fixed table.
type fakeContent struct {
	urls  map[int64]string
	err   error
	calls int
}

func (f *fakeContent) ResolveContentRef(_ context.Context, ref int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if url, ok := f.urls[ref]; ok {
		return url, nil
	}
	return "", apperrors.ErrNotFound
}

// fakeRenderer counts renders and can be switched to fail.
type fakeRenderer struct {
	mu          sync.Mutex
	fail        bool
	renders     int
	deletes     int
	deletedURLs []string
}

func (f *fakeRenderer) url(content string, opts qrimage.Options) string {
	return "https://assets.example.com/" + qrimage.AssetPath(qrimage.Fingerprint(content, opts))
}

func (f *fakeRenderer) RenderOrFetch(_ context.Context, content string, opts qrimage.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", apperrors.ErrRenderUnavailable
	}
	f.renders++
	return f.url(content, opts), nil
}

func (f *fakeRenderer) RenderFresh(ctx context.Context, content string, opts qrimage.Options) (string, error) {
	return f.RenderOrFetch(ctx, content, opts)
}

func (f *fakeRenderer) DeleteAssetByURL(_ context.Context, assetURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if assetURL == "" {
		return nil
	}
	f.deletes++
	f.deletedURLs = append(f.deletedURLs, assetURL)
	return nil
}

var _ ImageRenderer = (*fakeRenderer)(nil)
