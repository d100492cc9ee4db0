package models

// ArtifactKind names a file that may live inside a capture directory.
type ArtifactKind string

const (
	ArtifactArchive    ArtifactKind = "archive.wacz"
	ArtifactMetadata   ArtifactKind = "metadata.json"
	ArtifactScreenshot ArtifactKind = "screenshot.png"
	ArtifactSingleFile ArtifactKind = "singlefile.html"
)

// KnownArtifacts is the closed set of artifact files checked on every scan,
// in reporting order.
var KnownArtifacts = []ArtifactKind{
	ArtifactArchive,
	ArtifactMetadata,
	ArtifactScreenshot,
	ArtifactSingleFile,
}

// ParseArtifactKind accepts only the known artifact file names.
func ParseArtifactKind(s string) (ArtifactKind, bool) {
	for _, k := range KnownArtifacts {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// ContentType returns the MIME type used when serving the artifact.
func (k ArtifactKind) ContentType() string {
	switch k {
	case ArtifactArchive:
		return "application/wacz"
	case ArtifactMetadata:
		return "application/json"
	case ArtifactScreenshot:
		return "image/png"
	case ArtifactSingleFile:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (k ArtifactKind) String() string {
	return string(k)
}
