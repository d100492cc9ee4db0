package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"archive-browser/logger"
	"archive-browser/models"
	"archive-browser/storage"
	"archive-browser/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/morikuni/failure/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scan(t *testing.T, root string, opts ...storage.ScannerOption) (models.Catalog, models.ScanReport) {
	t.Helper()
	catalog, report, err := storage.NewScanner(root, 10*time.Second, logger.NewNop(), opts...).Scan(context.Background())
	require.NoError(t, err)
	return catalog, report
}

func TestScan_TwoCaptureScenario(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("example_com", "home_page", "req_a_20240315_143022",
		testutil.Metadata("https://example.com"), models.ArtifactArchive)
	tree.AddCapture("example_com", "home_page", "req_a_20240316_120000", nil)
	tree.AddCapture("other_org", "about", "req_z_20240101_000000",
		map[string]any{"url": "https://other.org/about", "title": "About"})

	catalog, report := scan(t, tree.Root)

	require.Len(t, catalog, 2)
	assert.Equal(t, 2, report.Resources)
	assert.Equal(t, 3, report.Captures)
	assert.False(t, report.Partial)

	r := catalog["example_com_home_page"]
	require.NotNil(t, r)
	assert.Equal(t, 2, r.CaptureCount())
	assert.Equal(t, "example_com/home_page", r.FolderName)
	assert.Equal(t, []string{"req_a_20240316_120000", "req_a_20240315_143022"},
		[]string{r.Captures[0].ID, r.Captures[1].ID})

	first, _ := r.FirstCaptured()
	last, _ := r.LastCaptured()
	assert.Equal(t, time.Date(2024, 3, 15, 14, 30, 22, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC), last)

	older := r.Captures[1]
	assert.Equal(t, "https://example.com", older.SourceURL)
	assert.Equal(t, "a", older.RequestID)
	assert.Equal(t, []models.ArtifactKind{models.ArtifactArchive, models.ArtifactMetadata}, older.Artifacts)
	assert.Equal(t, filepath.Join(tree.Root, "example_com", "home_page", "req_a_20240315_143022"), older.FolderPath)

	newer := r.Captures[0]
	assert.Empty(t, newer.Artifacts)
	assert.Empty(t, newer.Metadata)
	assert.Equal(t, "https://example/com/home/page", newer.SourceURL)
	assert.Equal(t, newer.SourceURL, r.CanonicalURL)

	about := catalog["other_org_about"]
	require.NotNil(t, about)
	assert.Equal(t, "About", about.Captures[0].Title)
	assert.Equal(t, "https://other.org/about", about.CanonicalURL)
}

func TestScan_CapturesNewestFirst(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	for _, name := range []string{
		"req_b_20240101_000000",
		"req_c_20231231_235959",
		"req_a_20240615_120000",
		"req_d_20240301_080000",
		"req_a_20240301_080000",
	} {
		tree.AddCapture("site_com", "p", name, nil)
	}

	catalog, _ := scan(t, tree.Root)
	captures := catalog["site_com_p"].Captures
	require.Len(t, captures, 5)

	var ids []string
	for i, c := range captures {
		ids = append(ids, c.ID)
		if i > 0 {
			assert.False(t, c.CapturedAt.After(captures[i-1].CapturedAt))
		}
	}
	want := []string{
		"req_a_20240615_120000",
		"req_a_20240301_080000",
		"req_d_20240301_080000",
		"req_b_20240101_000000",
		"req_c_20231231_235959",
	}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("capture order mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_SkipsNonCaptureEntries(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("site_com", "p", "req_a_20240315_143022", nil)
	tree.AddCapture("site_com", "p", "20240316_120000", nil)
	tree.AddCapture("site_com", "p", "snapshot_20240317", nil)
	tree.AddCapture("site_com", "p", "req_broken", nil)
	tree.WriteFile("site_com/p/req_file_20240318_000000", []byte("not a dir"))
	tree.WriteFile("README.txt", []byte("top-level file"))
	tree.WriteFile("site_com/notes.txt", []byte("segment-level file"))
	tree.AddCapture("empty_com", "nothing", "random_dir", nil)

	catalog, report := scan(t, tree.Root)

	require.Len(t, catalog, 1)
	captures := catalog["site_com_p"].Captures
	require.Len(t, captures, 1)
	assert.Equal(t, "req_a_20240315_143022", captures[0].ID)
	assert.Equal(t, 1, report.Skipped)
}

func TestScan_ArtifactsRecomputedEachScan(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("site_com", "p", "req_a_20240315_143022", testutil.Metadata("https://site.com/p"))

	catalog, _ := scan(t, tree.Root)
	assert.Equal(t, []models.ArtifactKind{models.ArtifactMetadata}, catalog["site_com_p"].Captures[0].Artifacts)

	tree.WriteFile("site_com/p/req_a_20240315_143022/screenshot.png", []byte("png"))
	catalog, _ = scan(t, tree.Root)
	assert.Equal(t,
		[]models.ArtifactKind{models.ArtifactMetadata, models.ArtifactScreenshot},
		catalog["site_com_p"].Captures[0].Artifacts)

	tree.Remove("site_com/p/req_a_20240315_143022/metadata.json")
	catalog, _ = scan(t, tree.Root)
	assert.Equal(t, []models.ArtifactKind{models.ArtifactScreenshot}, catalog["site_com_p"].Captures[0].Artifacts)
}

func TestScan_ArtifactDirectoryIsNotAnArtifact(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	dir := tree.AddCapture("site_com", "p", "req_a_20240315_143022", nil)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.wacz"), 0o755))

	catalog, _ := scan(t, tree.Root)
	assert.Empty(t, catalog["site_com_p"].Captures[0].Artifacts)
}

func TestScan_MalformedMetadataStillIncluded(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("site_com", "p", "req_a_20240315_143022", `{"archive_info": `)

	catalog, _ := scan(t, tree.Root)
	c := catalog["site_com_p"].Captures[0]
	assert.Empty(t, c.Metadata)
	assert.Equal(t, "https://site/com/p", c.SourceURL)
	assert.True(t, c.HasArtifact(models.ArtifactMetadata))
}

func TestScan_MissingRoot(t *testing.T) {
	catalog, report := scan(t, filepath.Join(t.TempDir(), "nope"))
	assert.NotNil(t, catalog)
	assert.Empty(t, catalog)
	assert.False(t, report.Partial)
}

func TestScan_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	catalog, _ := scan(t, path)
	assert.Empty(t, catalog)
}

func TestScan_UnreadableRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	require.NoError(t, os.Chmod(root, 0o000))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	_, _, err := storage.NewScanner(root, 0, logger.NewNop()).Scan(context.Background())
	require.Error(t, err)
	assert.True(t, failure.Is(err, storage.ErrStorageFailure))
}

func TestScan_FollowsSymlinkedDirectories(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	external := testutil.NewArchiveTree(t)
	external.AddCapture("linked_com", "p", "req_a_20240315_143022", nil)

	if err := os.Symlink(filepath.Join(external.Root, "linked_com"), filepath.Join(tree.Root, "linked_com")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	catalog, _ := scan(t, tree.Root)
	assert.Contains(t, catalog, "linked_com_p")
}

func TestScan_IDCollisionLastWriteWins(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("a", "b_c", "req_x_20240101_000000", nil)
	tree.AddCapture("a_b", "c", "req_y_20240202_000000", nil)

	catalog, _ := scan(t, tree.Root)
	require.Len(t, catalog, 1)
	r := catalog["a_b_c"]
	assert.Equal(t, "a_b/c", r.FolderName)
	assert.Equal(t, "req_y_20240202_000000", r.Captures[0].ID)
}

func TestScan_BudgetExceededReturnsPartial(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("a_com", "p", "req_a_20240315_143022", nil)
	tree.AddCapture("b_com", "p", "req_b_20240315_143022", nil)

	// Every clock reading advances one second: the first domain, its
	// segment and its capture fit in the budget, the second domain does not.
	clock := testutil.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	clock.Step = time.Second

	catalog, report, err := storage.NewScanner(tree.Root, 3500*time.Millisecond, logger.NewNop(),
		storage.WithClock(clock.Now)).Scan(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Partial)
	assert.Contains(t, catalog, "a_com_p")
	assert.NotContains(t, catalog, "b_com_p")
}

func TestScan_ZeroTimeoutDisablesBudget(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("a_com", "p", "req_a_20240315_143022", nil)
	tree.AddCapture("b_com", "p", "req_b_20240315_143022", nil)

	clock := testutil.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	clock.Step = time.Hour

	catalog, report, err := storage.NewScanner(tree.Root, 0, logger.NewNop(),
		storage.WithClock(clock.Now)).Scan(context.Background())
	require.NoError(t, err)
	assert.False(t, report.Partial)
	assert.Len(t, catalog, 2)
}

func TestScan_CanceledContextStillScansFully(t *testing.T) {
	tree := testutil.NewArchiveTree(t)
	tree.AddCapture("a_com", "p", "req_a_20240315_143022", nil)
	tree.AddCapture("b_com", "p", "req_b_20240315_143022", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	catalog, report, err := storage.NewScanner(tree.Root, 0, logger.NewNop()).Scan(ctx)
	require.NoError(t, err)
	assert.False(t, report.Partial)
	assert.Len(t, catalog, 2)
}
