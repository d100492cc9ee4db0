// Package listing sorts and paginates a catalog snapshot.
package listing

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"archive-browser/models"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

type ErrorCode string

const (
	// ErrInvalidPage rejects a page or limit below one.
	ErrInvalidPage ErrorCode = "InvalidPage"
	// ErrPageOutOfRange is a page past the last one. Page 1 is always valid.
	ErrPageOutOfRange ErrorCode = "PageOutOfRange"
	// ErrInvalidSort rejects an unknown sort key.
	ErrInvalidSort ErrorCode = "InvalidSort"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type SortKey string

const (
	SortByURL           SortKey = "url"
	SortByLastCaptured  SortKey = "last_captured"
	SortBySnapshotCount SortKey = "snapshot_count"
)

var SortKeys = []SortKey{SortByURL, SortByLastCaptured, SortBySnapshotCount}

// ParseSortKey accepts the known keys. An empty string means SortByURL.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortByURL, nil
	}
	if key := SortKey(s); lo.Contains(SortKeys, key) {
		return key, nil
	}
	return "", failure.New(ErrInvalidSort,
		failure.Message(fmt.Sprintf("Invalid sort option %q. Use one of: url, last_captured, snapshot_count", s)),
	)
}

// Page is one slice of a sorted listing.
type Page struct {
	Items []*models.Resource
	Meta  models.PaginationMeta
}

// Sort returns the catalog's resources ordered by key. Ties are broken by
// resource id so the order is total.
func Sort(catalog models.Catalog, key SortKey) []*models.Resource {
	resources := catalog.Resources()
	slices.SortFunc(resources, func(a, b *models.Resource) int {
		var c int
		switch key {
		case SortByLastCaptured:
			c = lastCaptured(b).Compare(lastCaptured(a))
		case SortBySnapshotCount:
			c = cmp.Compare(b.CaptureCount(), a.CaptureCount())
		default:
			c = strings.Compare(strings.ToLower(a.CanonicalURL), strings.ToLower(b.CanonicalURL))
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return resources
}

// List sorts the catalog and returns the requested 1-based page.
func List(catalog models.Catalog, key SortKey, page, limit int) (Page, error) {
	if page < 1 || limit < 1 {
		return Page{}, failure.New(ErrInvalidPage,
			failure.Message("Page and limit must be at least 1"),
			failure.Context{"page": fmt.Sprint(page), "limit": fmt.Sprint(limit)},
		)
	}

	total := len(catalog)
	meta := models.NewPaginationMeta(page, limit, total)
	start := (page - 1) * limit
	if page > 1 && start >= total {
		return Page{}, failure.New(ErrPageOutOfRange,
			failure.Message(fmt.Sprintf("Page %d does not exist. Total pages: %d", page, meta.TotalPages)),
		)
	}

	sorted := Sort(catalog, key)
	end := min(start+limit, total)
	return Page{Items: sorted[start:end], Meta: meta}, nil
}

// TotalPages is ceil(total/limit), zero for an empty listing.
func TotalPages(total, limit int) int {
	return models.NewPaginationMeta(1, limit, total).TotalPages
}

func lastCaptured(r *models.Resource) time.Time {
	t, _ := r.LastCaptured()
	return t
}
