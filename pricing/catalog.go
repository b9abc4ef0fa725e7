package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"formationdesk/backend/models"
)

const DefaultCatalogVersion = "builtin-1"

// Catalog is one consistent version of the add-on service list. Fallback is
// set when the remote catalog could not be used.
type Catalog struct {
	Version  string           `json:"version"`
	Items    []models.Service `json:"items"`
	Fallback bool             `json:"fallback"`
}

// Lookup returns the catalog entry with id.
func (c Catalog) Lookup(id string) (models.Service, bool) {
	for _, s := range c.Items {
		if s.ID == id {
			return s, true
		}
	}
	return models.Service{}, false
}

// DefaultCatalog is served whenever the remote catalog is unavailable.
func DefaultCatalog() Catalog {
	return Catalog{
		Version:  DefaultCatalogVersion,
		Fallback: true,
		Items: []models.Service{
			{ID: "ein", Name: "EIN Registration", Description: "Obtain a federal Employer Identification Number for the new entity.", Price: 7900},
			{ID: "website", Name: "Business Website", Description: "A starter website with domain and hosting for the first year.", Price: 29900},
			{ID: "itin", Name: "ITIN Application", Description: "Individual Taxpayer Identification Number filing for non-resident owners.", Price: 14900},
			{ID: "branding", Name: "Branding Kit", Description: "Logo, color palette and business card design.", Price: 19900},
		},
	}
}

type remoteService struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
}

type remoteCatalog struct {
	Version  string          `json:"version"`
	Services []remoteService `json:"services"`
}

// DefaultCatalogRetryAfter is how long a failed fetch is remembered before
// the endpoint is tried again.
const DefaultCatalogRetryAfter = 30 * time.Second

// CatalogFetcher reads the service catalog from a remote endpoint and caches
// successful reads for TTL. Concurrent callers share one fetch; after a
// failure the default catalog is served for RetryAfter.
type CatalogFetcher struct {
	URL        string
	HTTP       *http.Client
	TTL        time.Duration
	RetryAfter time.Duration

	group     singleflight.Group
	mu        sync.Mutex
	cached    Catalog
	fetchedAt time.Time
	failedAt  time.Time
	now       func() time.Time
}

func NewCatalogFetcher(url string, client *http.Client, ttl time.Duration) *CatalogFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &CatalogFetcher{URL: url, HTTP: client, TTL: ttl, RetryAfter: DefaultCatalogRetryAfter, now: time.Now}
}

// Catalog returns the current catalog: the remote one when it can be read
// in full, the default one otherwise. A caller whose ctx ends while a fetch
// is in flight gets the default catalog; the fetch itself carries on.
func (f *CatalogFetcher) Catalog(ctx context.Context) Catalog {
	if f == nil || f.URL == "" {
		return DefaultCatalog()
	}
	if c, ok := f.current(); ok {
		return c
	}
	ch := f.group.DoChan("catalog", func() (any, error) {
		return f.refresh(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		return res.Val.(Catalog).clone()
	case <-ctx.Done():
		return DefaultCatalog()
	}
}

// current returns the cached catalog, or the default one during the retry
// cooldown. ok is false when a fetch is due.
func (f *CatalogFetcher) current() (Catalog, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.now()
	if f.cached.Version != "" && now.Sub(f.fetchedAt) < f.TTL {
		return f.cached.clone(), true
	}
	if !f.failedAt.IsZero() && now.Sub(f.failedAt) < f.RetryAfter {
		return DefaultCatalog(), true
	}
	return Catalog{}, false
}

func (f *CatalogFetcher) refresh(ctx context.Context) Catalog {
	if c, ok := f.current(); ok {
		return c
	}
	c, err := f.fetch(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		log.Printf("catalog fetch failed, using default catalog for %s: %v", f.RetryAfter, err)
		f.failedAt = f.now()
		return DefaultCatalog()
	}
	f.cached = c
	f.fetchedAt = f.now()
	f.failedAt = time.Time{}
	return c.clone()
}

func (f *CatalogFetcher) fetch(ctx context.Context) (Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return Catalog{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return Catalog{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Catalog{}, fmt.Errorf("catalog endpoint: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Catalog{}, err
	}
	return decodeCatalog(body)
}

// decodeCatalog accepts either a bare array of services or {version, services}.
// Any malformed entry rejects the whole document.
func decodeCatalog(body []byte) (Catalog, error) {
	var doc remoteCatalog
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(body, &doc.Services); err != nil {
			return Catalog{}, fmt.Errorf("decode catalog: %w", err)
		}
	} else if err := json.Unmarshal(body, &doc); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Services) == 0 {
		return Catalog{}, fmt.Errorf("decode catalog: no services")
	}
	out := Catalog{Version: doc.Version, Items: make([]models.Service, 0, len(doc.Services))}
	seen := map[string]bool{}
	for _, s := range doc.Services {
		if s.ID == "" || seen[s.ID] {
			return Catalog{}, fmt.Errorf("decode catalog: missing or duplicate id %q", s.ID)
		}
		seen[s.ID] = true
		price, err := ParseCents(s.Price.String())
		if err != nil {
			return Catalog{}, fmt.Errorf("decode catalog: service %s: %w", s.ID, err)
		}
		out.Items = append(out.Items, models.Service{ID: s.ID, Name: s.Name, Description: s.Description, Price: int64(price)})
	}
	if out.Version == "" {
		out.Version = "remote"
	}
	return out, nil
}

func (c Catalog) clone() Catalog {
	c.Items = append([]models.Service(nil), c.Items...)
	return c
}
