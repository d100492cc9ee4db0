package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"archive-browser/logger"
	"archive-browser/models"

	"github.com/morikuni/failure/v2"
)

// Scanner walks an archive root laid out as
// {root}/{domain}/{path_segment}/{capture_dir}/ and builds a Catalog.
type Scanner struct {
	root    string
	timeout time.Duration
	log     logger.Logger
	now     func() time.Time
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithClock replaces time.Now for budget accounting.
func WithClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) {
		s.now = now
	}
}

// NewScanner creates a scanner for root. A timeout of zero or less disables
// the scan budget.
func NewScanner(root string, timeout time.Duration, log logger.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		root:    root,
		timeout: timeout,
		log:     log.With(logger.String("component", "scanner"), logger.String("root", root)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) Root() string {
	return s.root
}

// scanPass carries the state of one Scan call.
type scanPass struct {
	start   time.Time
	catalog models.Catalog
	report  models.ScanReport
}

// Scan walks the root once. A missing root yields an empty catalog and no
// error; an unreadable root is ErrStorageFailure. When the budget runs out
// the catalog built so far is returned and the report is marked partial.
// The timeout is the only bound on a pass; ctx cancellation does not cut
// it short.
func (s *Scanner) Scan(_ context.Context) (models.Catalog, models.ScanReport, error) {
	pass := &scanPass{
		start:   s.now(),
		catalog: models.Catalog{},
	}
	pass.report = models.ScanReport{Root: s.root, StartedAt: pass.start}

	info, err := os.Stat(s.root)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Error("Archive root does not exist")
		return pass.catalog, s.finish(pass), nil
	case err != nil:
		return nil, s.finish(pass), s.rootFailure(err)
	case !info.IsDir():
		s.log.Error("Archive root is not a directory")
		return pass.catalog, s.finish(pass), nil
	}

	domains, err := os.ReadDir(s.root)
	if err != nil {
		return nil, s.finish(pass), s.rootFailure(err)
	}

	for _, domain := range domains {
		if s.exhausted(pass) {
			break
		}
		domainPath := filepath.Join(s.root, domain.Name())
		if !isDir(domainPath, domain) {
			s.log.Debug("Skipping non-directory entry", logger.String("path", domainPath))
			continue
		}
		s.scanDomain(pass, domain.Name(), domainPath)
	}

	report := s.finish(pass)
	if report.Partial {
		s.log.Warn("Scan budget exceeded, returning partial catalog",
			logger.Duration("timeout", s.timeout),
			logger.Int("resources", report.Resources),
			logger.Int("captures", report.Captures),
		)
	}
	s.log.Info("Scan complete",
		logger.Duration("duration", report.Duration),
		logger.Int("resources", report.Resources),
		logger.Int("captures", report.Captures),
		logger.Int("skipped", report.Skipped),
	)
	return pass.catalog, report, nil
}

func (s *Scanner) rootFailure(err error) error {
	s.log.Error("Failed to read archive root", logger.Error(err))
	return failure.Translate(err, ErrStorageFailure,
		failure.Message("Failed to read archive root"),
		failure.Context{"root": s.root},
	)
}

func (s *Scanner) finish(pass *scanPass) models.ScanReport {
	pass.report.Duration = s.now().Sub(pass.start)
	pass.report.Resources = len(pass.catalog)
	pass.report.Captures = pass.catalog.TotalCaptures()
	return pass.report
}

// exhausted reports whether the budget is spent. Once set, the partial flag
// stays set for the whole pass.
func (s *Scanner) exhausted(pass *scanPass) bool {
	if pass.report.Partial {
		return true
	}
	if s.timeout > 0 && s.now().Sub(pass.start) > s.timeout {
		pass.report.Partial = true
	}
	return pass.report.Partial
}

func (s *Scanner) scanDomain(pass *scanPass, domain, domainPath string) {
	segments, err := os.ReadDir(domainPath)
	if err != nil {
		s.log.Warn("Failed to read domain directory", logger.String("domain", domain), logger.Error(err))
		return
	}

	for _, segment := range segments {
		if s.exhausted(pass) {
			return
		}
		segmentPath := filepath.Join(domainPath, segment.Name())
		if !isDir(segmentPath, segment) {
			continue
		}

		id := domain + "_" + segment.Name()
		captures := s.scanCaptures(pass, id, segmentPath)
		if len(captures) == 0 {
			continue
		}

		canonical := captures[0].SourceURL
		if canonical == "" {
			canonical = domainURL(domain)
		}
		if prev, ok := pass.catalog[id]; ok {
			s.log.Warn("Resource id collision, keeping the later directory",
				logger.String("resource_id", id),
				logger.String("previous", prev.FolderName),
				logger.String("current", domain+"/"+segment.Name()),
			)
		}
		pass.catalog[id] = &models.Resource{
			ID:           id,
			CanonicalURL: canonical,
			FolderName:   domain + "/" + segment.Name(),
			Captures:     captures,
		}
	}
}

// scanCaptures returns the captures under one path segment, newest first.
func (s *Scanner) scanCaptures(pass *scanPass, resourceID, segmentPath string) []*models.Capture {
	entries, err := os.ReadDir(segmentPath)
	if err != nil {
		s.log.Warn("Failed to read path segment directory",
			logger.String("resource_id", resourceID),
			logger.Error(err),
		)
		return nil
	}

	var captures []*models.Capture
	for _, entry := range entries {
		if s.exhausted(pass) {
			break
		}
		capturePath := filepath.Join(segmentPath, entry.Name())
		if !isDir(capturePath, entry) || !strings.HasPrefix(entry.Name(), requestPrefix) {
			s.log.Debug("Skipping non-capture entry", logger.String("path", capturePath))
			continue
		}

		capturedAt, ok := ParseTimestamp(entry.Name())
		if !ok {
			s.log.Warn("Skipping capture with unparseable name", logger.String("path", capturePath))
			pass.report.Skipped++
			continue
		}
		captures = append(captures, s.buildCapture(resourceID, entry.Name(), capturePath, capturedAt))
	}

	slices.SortStableFunc(captures, func(a, b *models.Capture) int {
		if c := b.CapturedAt.Compare(a.CapturedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return captures
}

func (s *Scanner) buildCapture(resourceID, name, dir string, capturedAt time.Time) *models.Capture {
	doc := ReadMetadata(filepath.Join(dir, string(models.ArtifactMetadata)), s.log)
	requestID, _ := ParseRequestID(name)
	return &models.Capture{
		ID:         name,
		RequestID:  requestID,
		CapturedAt: capturedAt,
		Title:      MetadataTitle(doc),
		SourceURL:  ResolveSourceURL(doc, resourceID),
		Metadata:   doc,
		Artifacts:  presentArtifacts(dir),
		FolderPath: dir,
	}
}

// presentArtifacts lists the known artifacts that exist as regular files.
func presentArtifacts(dir string) []models.ArtifactKind {
	present := make([]models.ArtifactKind, 0, len(models.KnownArtifacts))
	for _, kind := range models.KnownArtifacts {
		if isRegularFile(filepath.Join(dir, string(kind))) {
			present = append(present, kind)
		}
	}
	return present
}

// isDir follows symlinks so linked directories are walked too.
func isDir(path string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
