package storage

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"archive-browser/logger"
)

// ReadMetadata loads a capture's metadata document. It never fails: a
// missing, unreadable or malformed file yields an empty document.
func ReadMetadata(path string, log logger.Logger) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("No metadata file", logger.String("path", path))
		} else {
			log.Error("Failed to read metadata file", logger.String("path", path), logger.Error(err))
		}
		return map[string]any{}
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("Malformed metadata file", logger.String("path", path), logger.Error(err))
		return map[string]any{}
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		log.Warn("Metadata file is not a JSON object", logger.String("path", path))
		return map[string]any{}
	}
	return doc
}

// ResolveSourceURL picks the URL a capture was taken from: archive_info.url,
// then the top-level url, then a reconstruction from the resource id.
func ResolveSourceURL(doc map[string]any, resourceID string) string {
	if info, ok := doc["archive_info"].(map[string]any); ok {
		if u, ok := info["url"].(string); ok && u != "" {
			return u
		}
	}
	if u, ok := doc["url"].(string); ok && u != "" {
		return u
	}
	return ReconstructURL(resourceID)
}

// ReconstructURL turns a resource id back into a best-effort URL:
// underscores become slashes, percent escapes are decoded when valid, and
// https:// is prefixed unless a scheme is already present.
func ReconstructURL(resourceID string) string {
	raw := strings.ReplaceAll(resourceID, "_", "/")
	u, err := url.PathUnescape(raw)
	if err != nil {
		u = raw
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}

// MetadataTitle returns the top-level title when it is a string.
func MetadataTitle(doc map[string]any) string {
	title, _ := doc["title"].(string)
	return title
}

// domainURL is the canonical URL fallback for a resource with no captured URL.
func domainURL(domain string) string {
	return "https://" + strings.ReplaceAll(domain, "_", ".")
}
