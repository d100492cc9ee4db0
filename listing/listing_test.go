package listing_test

import (
	"fmt"
	"testing"
	"time"

	"archive-browser/listing"
	"archive-browser/models"

	"github.com/google/go-cmp/cmp"
	"github.com/morikuni/failure/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func resource(id, url string, captures ...time.Time) *models.Resource {
	r := &models.Resource{ID: id, CanonicalURL: url}
	for i, at := range captures {
		r.Captures = append(r.Captures, &models.Capture{ID: fmt.Sprintf("%s-%d", id, i), CapturedAt: at})
	}
	return r
}

func catalogOf(n int) models.Catalog {
	c := models.Catalog{}
	for i := range n {
		id := fmt.Sprintf("site%03d_com_p", i)
		c[id] = resource(id, fmt.Sprintf("https://site%03d.com/p", i), base.Add(time.Duration(i)*time.Hour))
	}
	return c
}

func ids(rs []*models.Resource) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestList_95By10(t *testing.T) {
	catalog := catalogOf(95)

	first, err := listing.List(catalog, listing.SortByURL, 1, 10)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 10, first.Meta.TotalPages)
	assert.Equal(t, 95, first.Meta.TotalCount)
	assert.True(t, first.Meta.HasNext)
	assert.False(t, first.Meta.HasPrevious)

	last, err := listing.List(catalog, listing.SortByURL, 10, 10)
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)
	assert.False(t, last.Meta.HasNext)
	assert.True(t, last.Meta.HasPrevious)

	_, err = listing.List(catalog, listing.SortByURL, 11, 10)
	require.Error(t, err)
	assert.True(t, failure.Is(err, listing.ErrPageOutOfRange))
	assert.Equal(t, "Page 11 does not exist. Total pages: 10", failure.MessageOf(err).String())
}

func TestList_Empty(t *testing.T) {
	page, err := listing.List(models.Catalog{}, listing.SortByURL, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Meta.TotalPages)
	assert.Equal(t, 0, page.Meta.TotalCount)

	_, err = listing.List(models.Catalog{}, listing.SortByURL, 2, 10)
	assert.True(t, failure.Is(err, listing.ErrPageOutOfRange))
}

func TestList_InvalidPage(t *testing.T) {
	for _, tc := range [][2]int{{0, 10}, {-1, 10}, {1, 0}} {
		_, err := listing.List(catalogOf(3), listing.SortByURL, tc[0], tc[1])
		assert.True(t, failure.Is(err, listing.ErrInvalidPage), "page=%d limit=%d", tc[0], tc[1])
	}
}

func TestSort(t *testing.T) {
	catalog := models.Catalog{
		"b": resource("b", "https://Beta.example", base, base.Add(time.Hour)),
		"a": resource("a", "https://alpha.example", base.Add(48*time.Hour)),
		"c": resource("c", "https://gamma.example", base.Add(2*time.Hour), base, base.Add(-time.Hour)),
		"d": resource("d", "https://ALPHA.example", base.Add(2*time.Hour)),
	}

	tests := []struct {
		key  listing.SortKey
		want []string
	}{
		{listing.SortByURL, []string{"a", "d", "b", "c"}},
		{listing.SortByLastCaptured, []string{"a", "c", "d", "b"}},
		{listing.SortBySnapshotCount, []string{"c", "b", "a", "d"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := ids(listing.Sort(catalog, tt.key))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Sort(%s) mismatch (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	key, err := listing.ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, listing.SortByURL, key)

	key, err = listing.ParseSortKey("snapshot_count")
	require.NoError(t, err)
	assert.Equal(t, listing.SortBySnapshotCount, key)

	_, err = listing.ParseSortKey("size")
	assert.True(t, failure.Is(err, listing.ErrInvalidSort))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 10, listing.TotalPages(95, 10))
	assert.Equal(t, 10, listing.TotalPages(100, 10))
	assert.Equal(t, 1, listing.TotalPages(1, 50))
	assert.Equal(t, 0, listing.TotalPages(0, 50))
}
