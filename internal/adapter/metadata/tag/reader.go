// Package tag provides a MetadataReader backed by the dhowden/tag library.
package tag

import (
	"io"
	"log/slog"

	dhowden "github.com/dhowden/tag"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// Reader extracts audio metadata from tagged files (ID3, MP4, FLAC, OGG).
// Extraction is best effort: any failure yields "no metadata" rather than an
// error, so a single unreadable file can never abort a scan.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a new metadata reader.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Extract reads tags from an open audio stream.
func (r *Reader) Extract(rs io.ReadSeeker) (domain.Metadata, bool) {
	m, err := dhowden.ReadFrom(rs)
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("metadata extraction failed", slog.Any("error", err))
		}
		return domain.Metadata{}, false
	}

	meta := domain.Metadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}

	track, _ := m.Track()
	if track > 0 {
		meta.TrackNumber = track
	}

	if pic := m.Picture(); pic != nil {
		meta.AlbumArt = pic.Data
	}

	return meta, true
}

// Verify that Reader implements the MetadataReader interface
var _ ports.MetadataReader = (*Reader)(nil)
