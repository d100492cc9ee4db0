package storage

import (
	"context"
	"io"

	"archive-browser/models"
)

// Provider gives read access to archived captures. Lookups that find
// nothing return nil or false with a nil error; errors are reserved for
// ErrStorageFailure and ErrUnsupported.
type Provider interface {
	// ListAll performs a fresh scan and returns the resulting catalog.
	ListAll(ctx context.Context) (models.Catalog, error)
	ResourceByID(ctx context.Context, id string) (*models.Resource, error)
	CaptureByID(ctx context.Context, id string) (*models.Capture, error)
	ArtifactStream(ctx context.Context, captureID string, kind models.ArtifactKind) (io.ReadCloser, error)
	ArtifactExists(ctx context.Context, captureID string, kind models.ArtifactKind) (bool, error)
	// ArtifactPath returns a local filesystem locator. Providers without
	// one return ErrUnsupported.
	ArtifactPath(ctx context.Context, captureID string, kind models.ArtifactKind) (string, error)
}

// ScanObserver is notified after every scan pass. err is non-nil when the
// pass failed outright.
type ScanObserver interface {
	ObserveScan(ctx context.Context, report models.ScanReport, err error)
}
