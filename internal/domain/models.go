// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the music player.
package domain

// Song represents a single audio file known to the library.
// This is the core domain model; the URI is the stable identity of the file.
type Song struct {
	// URI is the stable resource identifier of the audio file.
	// It is unique within the catalog.
	URI string

	// DisplayName is the file name including extension
	DisplayName string

	// Title is the song title (from metadata or filename)
	Title string

	// Artist is the performing artist name
	Artist string

	// Album is the album name
	Album string

	// TrackNumber is the track number on the album (0 if unknown)
	TrackNumber int

	// PlayCount is the number of times playback of this song was started.
	// It only ever increments.
	PlayCount int

	// SourceFolder is the URI of the tracked folder root the song was found under
	SourceFolder string

	// Exists reports whether the underlying file was reachable the last time
	// it was needed. Songs referenced by playlists but no longer scannable are
	// flagged rather than removed.
	Exists bool
}

// Playlist is a named ordered sequence of songs resolved from an imported
// .m3u/.m3u8 file. Songs are references into the catalog, not copies, so a
// reloaded playlist tracks catalog updates.
type Playlist struct {
	// Name is the playlist display name (import filename, extension stripped)
	Name string

	// Songs is the ordered list of resolved songs (duplicates permitted)
	Songs []Song
}

// RepeatMode governs queue advancement when a track completes naturally.
type RepeatMode int

const (
	// RepeatOff stops playback when the queue is exhausted
	RepeatOff RepeatMode = iota

	// RepeatAll wraps from the last queue entry back to the first
	RepeatAll

	// RepeatOne restarts the current track on completion
	RepeatOne
)

// String returns a human-readable representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// Cycle returns the next repeat mode in the off -> all -> one -> off rotation.
func (m RepeatMode) Cycle() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode converts a persisted repeat mode string back to a RepeatMode.
// Unknown values default to RepeatOff.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	// StatusIdle indicates no song is active (current index is -1, or the
	// queue was exhausted with repeat off)
	StatusIdle PlaybackStatus = iota

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState is a snapshot of the playback queue and state machine.
// This is what the UI layer and the remote-control surface render.
type PlaybackState struct {
	// CurrentSong is the active song (nil when nothing was played yet)
	CurrentSong *Song

	// CurrentIndex is the 0-based index into Queue, or -1 when idle.
	// After the queue is exhausted with repeat off it keeps pointing at the
	// last track for display purposes.
	CurrentIndex int

	// Queue is the ordered song list currently driving playback
	Queue []Song

	// Status is the current state machine state
	Status PlaybackStatus

	// PositionMS is the playback position within the current track
	PositionMS int

	// DurationMS is the total length of the current track
	DurationMS int

	// Shuffle reports whether the queue ordering is shuffled
	Shuffle bool

	// Repeat is the active repeat mode
	Repeat RepeatMode
}

// ControlAction identifies a control event from an external surface
// (the notification-bar remote or any other out-of-process controller).
type ControlAction string

const (
	ControlPlayPause   ControlAction = "play_pause"
	ControlNext        ControlAction = "next"
	ControlPrevious    ControlAction = "previous"
	ControlStop        ControlAction = "stop"
	ControlShuffle     ControlAction = "shuffle"
	ControlRepeatCycle ControlAction = "repeat"
	ControlSeek        ControlAction = "seek"
)

// ScanProgress represents the progress of a library scan.
type ScanProgress struct {
	// CurrentFile is the file most recently processed
	CurrentFile string

	// FilesScanned is the number of files processed so far
	FilesScanned int

	// TotalFiles is the total number of files to scan, or -1 when the total
	// could not be cheaply determined up front (indeterminate progress)
	TotalFiles int

	// SongsFound is the number of valid songs found so far
	SongsFound int
}

// Indeterminate reports whether the total file count is unknown.
func (p ScanProgress) Indeterminate() bool {
	return p.TotalFiles < 0
}

// Fraction returns the completion fraction in [0, 1], or -1 when the total is
// unknown. The fraction is monotonically non-decreasing over a scan.
func (p ScanProgress) Fraction() float64 {
	if p.TotalFiles <= 0 {
		return -1
	}
	f := float64(p.FilesScanned) / float64(p.TotalFiles)
	if f > 1 {
		f = 1
	}
	return f
}

// PlayerHandle represents a handle to a live player resource.
// This is an opaque identifier used by the player capability to reference a
// created playback resource. At most one handle is live at a time.
type PlayerHandle int64

const (
	// InvalidPlayerHandle represents an invalid or uninitialized player handle
	InvalidPlayerHandle PlayerHandle = 0
)

// Metadata holds the best-effort result of metadata extraction for one file.
// Every field is independently optional; empty means "not present", never an
// error. Callers substitute filename-derived fallbacks.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	TrackNumber int

	// AlbumArt is the embedded artwork as raw bytes, if any
	AlbumArt []byte
}
