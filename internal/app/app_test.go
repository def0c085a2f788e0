package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
	"github.com/kazu-1234/MusicPlayer/internal/testutil"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	config := DefaultConfig()
	config.DataDir = t.TempDir()
	config.WatchFolders = false
	return config
}

func musicDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("audio"), 0o644))
	}
	return dir
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.NotEmpty(t, config.DataDir)
	assert.True(t, config.WatchFolders)
	assert.Nil(t, config.Player)
}

func TestNewApplication(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, app)

	// Verify all services were created
	playback, playlist, library, preference := app.GetServices()
	assert.NotNil(t, playback)
	assert.NotNil(t, playlist)
	assert.NotNil(t, library)
	assert.NotNil(t, preference)

	// Verify event bus was created
	assert.NotNil(t, app.GetEventBus())

	// Cleanup
	err = app.Shutdown()
	assert.NoError(t, err)
}

func TestApplicationLifecycle(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)

	// Run would normally block, but we're not calling it in test

	// Shutdown
	err = app.Shutdown()
	assert.NoError(t, err)

	// Shutdown again should not panic
	err = app.Shutdown()
	assert.NoError(t, err)
}

func TestApplicationScanAndPlay(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	app, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = app.Shutdown() }()

	playback, _, library, _ := app.GetServices()

	dir := musicDir(t, "01 - First.mp3", "02 - Second.mp3")
	songs, err := library.Scan(dir)
	require.NoError(t, err)
	require.Len(t, songs, 2)

	require.NoError(t, playback.PlayAt(songs, 0))

	state := playback.State()
	assert.Equal(t, domain.StatusPlaying, state.Status)
	require.NotNil(t, state.CurrentSong)
	assert.Equal(t, songs[0].URI, state.CurrentSong.URI)

	require.NoError(t, playback.Next())
	state = playback.State()
	assert.Equal(t, 1, state.CurrentIndex)
}

func TestApplicationStatePersistence(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	config := testConfig(t)
	dir := musicDir(t, "Track.mp3")

	app, err := NewApplication(config)
	require.NoError(t, err)

	playback, _, library, _ := app.GetServices()
	songs, err := library.Scan(dir)
	require.NoError(t, err)
	require.Len(t, songs, 1)

	playback.CycleRepeat() // off -> all
	require.NoError(t, app.Shutdown())

	// Second instance against the same data directory
	restarted, err := NewApplication(config)
	require.NoError(t, err)
	defer func() { _ = restarted.Shutdown() }()

	playback, _, library, _ = restarted.GetServices()
	assert.Len(t, library.Songs(), 1)
	assert.Equal(t, []string{dir}, library.Folders())
	assert.Equal(t, domain.RepeatAll, playback.State().Repeat)
}

func TestApplicationWatcherRescan(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	config := testConfig(t)
	config.WatchFolders = true

	app, err := NewApplication(config)
	require.NoError(t, err)
	defer func() { _ = app.Shutdown() }()

	_, _, library, _ := app.GetServices()

	dir := musicDir(t, "One.mp3")
	_, err = library.Scan(dir)
	require.NoError(t, err)

	// A new file under the tracked folder triggers an automatic rescan
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Two.mp3"), []byte("audio"), 0o644))

	require.Eventually(t, func() bool {
		return len(library.Songs()) == 2
	}, 5*time.Second, 50*time.Millisecond)
}
