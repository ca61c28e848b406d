package beep

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// readTitle builds a session title from the file's tags, falling back to
// the file name. r is rewound before returning.
func readTitle(r io.ReadSeeker, path string) string {
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	defer func() {
		_, _ = r.Seek(0, io.SeekStart)
	}()

	metadata, err := tag.ReadFrom(r)
	if err != nil || metadata == nil {
		return title
	}

	name := strings.TrimSpace(metadata.Title())
	artist := strings.TrimSpace(metadata.Artist())
	switch {
	case name != "" && artist != "":
		return artist + " - " + name
	case name != "":
		return name
	default:
		return title
	}
}
