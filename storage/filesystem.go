package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"archive-browser/logger"
	"archive-browser/models"

	"github.com/morikuni/failure/v2"
)

// FilesystemProvider serves captures from a single local archive root.
// It keeps the most recent scan result so id lookups do not rescan.
type FilesystemProvider struct {
	scanner   *Scanner
	log       logger.Logger
	observers []ScanObserver

	mu   sync.RWMutex
	last models.Catalog

	// firstScan serializes the lazy scan behind lookups.
	firstScan sync.Mutex
}

var _ Provider = (*FilesystemProvider)(nil)

// Option configures a FilesystemProvider.
type Option func(*providerOptions)

type providerOptions struct {
	observers []ScanObserver
	scanner   []ScannerOption
}

// WithObservers registers scan observers.
func WithObservers(observers ...ScanObserver) Option {
	return func(o *providerOptions) {
		o.observers = append(o.observers, observers...)
	}
}

// WithScannerOptions passes options through to the underlying Scanner.
func WithScannerOptions(opts ...ScannerOption) Option {
	return func(o *providerOptions) {
		o.scanner = append(o.scanner, opts...)
	}
}

func NewFilesystemProvider(root string, timeout time.Duration, log logger.Logger, opts ...Option) *FilesystemProvider {
	var o providerOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &FilesystemProvider{
		scanner:   NewScanner(root, timeout, log, o.scanner...),
		log:       log.With(logger.String("component", "filesystem_provider")),
		observers: o.observers,
	}
}

func (p *FilesystemProvider) Root() string {
	return p.scanner.Root()
}

// ListAll scans the root. Observers run on a context detached from the
// caller's cancellation so a finished pass is always recorded.
func (p *FilesystemProvider) ListAll(ctx context.Context) (models.Catalog, error) {
	ctx = context.WithoutCancel(ctx)
	catalog, report, err := p.scanner.Scan(ctx)
	for _, obs := range p.observers {
		obs.ObserveScan(ctx, report, err)
	}
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.last = catalog
	p.mu.Unlock()
	return catalog, nil
}

// current returns the last scan result, scanning once if there is none.
func (p *FilesystemProvider) current(ctx context.Context) (models.Catalog, error) {
	if last := p.lastCatalog(); last != nil {
		return last, nil
	}

	p.firstScan.Lock()
	defer p.firstScan.Unlock()
	if last := p.lastCatalog(); last != nil {
		return last, nil
	}
	return p.ListAll(ctx)
}

func (p *FilesystemProvider) lastCatalog() models.Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

func (p *FilesystemProvider) ResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	catalog, err := p.current(ctx)
	if err != nil {
		return nil, err
	}
	return catalog[id], nil
}

func (p *FilesystemProvider) CaptureByID(ctx context.Context, id string) (*models.Capture, error) {
	catalog, err := p.current(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FindCapture(id), nil
}

func (p *FilesystemProvider) ArtifactPath(ctx context.Context, captureID string, kind models.ArtifactKind) (string, error) {
	kind, ok := models.ParseArtifactKind(string(kind))
	if !ok {
		return "", nil
	}
	capture, err := p.CaptureByID(ctx, captureID)
	if err != nil || capture == nil {
		return "", err
	}

	path := filepath.Join(capture.FolderPath, string(kind))
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	case err != nil:
		return "", p.artifactFailure(err, captureID, kind)
	case !info.Mode().IsRegular():
		return "", nil
	}
	return path, nil
}

func (p *FilesystemProvider) ArtifactExists(ctx context.Context, captureID string, kind models.ArtifactKind) (bool, error) {
	path, err := p.ArtifactPath(ctx, captureID, kind)
	if err != nil {
		return false, err
	}
	return path != "", nil
}

// ArtifactStream opens the artifact for reading. The caller closes it.
func (p *FilesystemProvider) ArtifactStream(ctx context.Context, captureID string, kind models.ArtifactKind) (io.ReadCloser, error) {
	path, err := p.ArtifactPath(ctx, captureID, kind)
	if err != nil || path == "" {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, p.artifactFailure(err, captureID, kind)
	}
	return f, nil
}

func (p *FilesystemProvider) artifactFailure(err error, captureID string, kind models.ArtifactKind) error {
	p.log.Error("Failed to access artifact",
		logger.String("capture_id", captureID),
		logger.String("artifact", string(kind)),
		logger.Error(err),
	)
	return failure.Translate(err, ErrStorageFailure,
		failure.Message("Failed to access artifact"),
		failure.Context{"capture_id": captureID, "artifact": string(kind)},
	)
}
