// Package ports define the remote-control interface for the notification surface.
package ports

import (
	"github.com/kazu-1234/MusicPlayer/internal/domain"
)

// RemoteControl is the interface for the notification/remote-control surface.
// It receives playback state snapshots to render and emits control events
// (play/pause/next/previous/stop/shuffle/repeat/seek) back into the playback
// service. The platform build would back this with a media-session
// notification; headless builds log the snapshots instead.
type RemoteControl interface {
	// ShowState renders a playback state snapshot on the control surface.
	ShowState(state domain.PlaybackState)

	// Hide removes the control surface (playback stopped or app exiting).
	Hide()

	// Close releases surface resources. ShowState must not be called afterwards.
	Close() error
}
