// Package remote provides remote control surfaces for playback.
// The console implementation mirrors playback state to the log so headless
// runs still expose what a hardware or OS media surface would show.
package remote

import (
	"log/slog"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/ports"
)

// Console is a RemoteControl that reports playback state through the logger.
type Console struct {
	logger *slog.Logger
}

// Ensure interface compliance at compile time
var _ ports.RemoteControl = (*Console)(nil)

// NewConsole creates a console remote control.
func NewConsole(logger *slog.Logger) *Console {
	return &Console{logger: logger}
}

// ShowState reports the current playback state.
func (c *Console) ShowState(state domain.PlaybackState) {
	attrs := []any{
		slog.String("status", state.Status.String()),
		slog.Bool("shuffle", state.Shuffle),
		slog.String("repeat", state.Repeat.String()),
		slog.Int("queue", len(state.Queue)),
	}
	if state.CurrentSong != nil {
		attrs = append(attrs,
			slog.String("title", state.CurrentSong.Title),
			slog.String("artist", state.CurrentSong.Artist),
			slog.Int("position_ms", state.PositionMS),
			slog.Int("duration_ms", state.DurationMS))
	}
	c.logger.Info("now playing", attrs...)
}

// Hide clears the remote surface.
func (c *Console) Hide() {
	c.logger.Info("playback surface hidden")
}

// Close releases the remote surface.
func (c *Console) Close() error {
	return nil
}
