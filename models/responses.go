package models

import "time"

// PaginationMeta describes one page of a listing.
type PaginationMeta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPaginationMeta computes the page count with ceiling division.
// A zero total yields zero pages.
func NewPaginationMeta(page, limit, total int) PaginationMeta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return PaginationMeta{
		Page:        page,
		Limit:       limit,
		TotalCount:  total,
		TotalPages:  pages,
		HasNext:     page < pages,
		HasPrevious: page > 1,
	}
}

type PaginatedResponse[T any] struct {
	Success    bool           `json:"success"`
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// URLSummary is the listing row for one resource.
type URLSummary struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	FolderName    string    `json:"folder_name"`
	SnapshotCount int       `json:"snapshot_count"`
	FirstCaptured time.Time `json:"first_captured"`
	LastCaptured  time.Time `json:"last_captured"`
	DateRange     string    `json:"date_range"`
	HasScreenshot bool      `json:"has_screenshot"`
}

func NewURLSummary(r *Resource) URLSummary {
	first, _ := r.FirstCaptured()
	last, _ := r.LastCaptured()
	return URLSummary{
		ID:            r.ID,
		URL:           r.CanonicalURL,
		FolderName:    r.FolderName,
		SnapshotCount: r.CaptureCount(),
		FirstCaptured: first,
		LastCaptured:  last,
		DateRange:     r.DateRange(),
		HasScreenshot: r.HasArtifact(ArtifactScreenshot),
	}
}

// CaptureDetail is the public view of a capture. The folder path stays private.
type CaptureDetail struct {
	ID         string         `json:"id"`
	RequestID  string         `json:"request_id,omitempty"`
	URL        string         `json:"url"`
	Title      string         `json:"title,omitempty"`
	CapturedAt time.Time      `json:"timestamp"`
	Artifacts  []ArtifactKind `json:"available_artifacts"`
	Metadata   map[string]any `json:"metadata"`
}

// ResourceDetail is a resource together with its captures, newest first.
type ResourceDetail struct {
	URLSummary
	Snapshots []CaptureDetail `json:"snapshots"`
}

func NewCaptureDetail(c *Capture) CaptureDetail {
	metadata := c.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return CaptureDetail{
		ID:         c.ID,
		RequestID:  c.RequestID,
		URL:        c.SourceURL,
		Title:      c.Title,
		CapturedAt: c.CapturedAt,
		Artifacts:  c.Artifacts,
		Metadata:   metadata,
	}
}
