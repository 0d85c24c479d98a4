// internal/clientsite/cache.go
//
// Read-through site cache.
//
// Context
// -------
// Every check-in validates its target site, so the lookup sits on the
// hottest write path of the system.  Directory keeps recently seen site
// rows in a small LRU with a short TTL, and collapses concurrent misses
// for the same id through singleflight so a burst of check-ins against a
// cold site costs one query, not N.
//
// Negative results are deliberately NOT cached: an unknown id is a client
// mistake and should stay cheap to re-check once the site is created.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package clientsite

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/fieldtrak/fieldtrak/internal/cache"
)

// Static defaults.
const (
	cacheTTL     = 2 * time.Minute
	cacheEntries = 512
)

type cachedSite struct {
	rec      *Record
	loadedAt time.Time
}

// Directory is a concurrency-safe read-through cache over the
// client_site table.
type Directory struct {
	db  *sqlx.DB
	sfg singleflight.Group

	mu  sync.Mutex
	lru *cache.LRU[uuid.UUID, cachedSite]
}

// NewDirectory wraps an open pool.
func NewDirectory(db *sqlx.DB) *Directory {
	return &Directory{
		db:  db,
		lru: cache.New[uuid.UUID, cachedSite](cacheEntries),
	}
}

// Get returns the active site row for id, loading it on demand.  Returns
// (nil, nil) for an unknown or archived site.
func (d *Directory) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	d.mu.Lock()
	if cs, ok := d.lru.Get(id); ok && time.Since(cs.loadedAt) < cacheTTL {
		d.mu.Unlock()
		return cs.rec, nil
	}
	d.mu.Unlock()

	v, err, _ := d.sfg.Do(id.String(), func() (interface{}, error) {
		rec, err := ByID(ctx, d.db, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			d.mu.Lock()
			d.lru.Add(id, cachedSite{rec: rec, loadedAt: time.Now()})
			d.mu.Unlock()
		}
		return rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// Exists reports whether an active site with this id is known.
func (d *Directory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	rec, err := d.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Locate satisfies checkin.SiteDirectory: the site's coordinates plus an
// existence flag, so the lifecycle can derive a check-in's distance from
// the site without importing this package's model.
func (d *Directory) Locate(ctx context.Context, id uuid.UUID) (lat, lng float64, ok bool, err error) {
	rec, err := d.Get(ctx, id)
	if err != nil || rec == nil {
		return 0, 0, false, err
	}
	return rec.Latitude, rec.Longitude, true, nil
}

// Invalidate drops a cached row, for callers that archive or edit sites.
func (d *Directory) Invalidate(id uuid.UUID) {
	d.mu.Lock()
	d.lru.Remove(id)
	d.mu.Unlock()
}
