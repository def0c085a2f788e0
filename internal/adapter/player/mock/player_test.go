package mock

import (
	"testing"

	"github.com/kazu-1234/MusicPlayer/internal/domain"
)

// TestNewPlayer tests creating a new mock player.
func TestNewPlayer(t *testing.T) {
	player := NewPlayer()

	if player == nil {
		t.Fatal("NewPlayer returned nil")
	}

	if player.LiveResources() != 0 {
		t.Errorf("Expected 0 live resources, got %d", player.LiveResources())
	}

	if player.LiveHandle() != domain.InvalidPlayerHandle {
		t.Error("New player should have no live handle")
	}
}

// TestCreateAndRelease tests the resource lifecycle.
func TestCreateAndRelease(t *testing.T) {
	player := NewPlayer()

	handle, err := player.Create("/music/a.mp3")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if handle == domain.InvalidPlayerHandle {
		t.Fatal("Create returned invalid handle")
	}
	if player.LiveResources() != 1 {
		t.Errorf("Expected 1 live resource, got %d", player.LiveResources())
	}
	if player.URIOf(handle) != "/music/a.mp3" {
		t.Errorf("Expected URI /music/a.mp3, got %s", player.URIOf(handle))
	}

	if err := player.Release(handle); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if player.LiveResources() != 0 {
		t.Errorf("Expected 0 live resources after release, got %d", player.LiveResources())
	}

	// Releasing again is an error
	if err := player.Release(handle); err == nil {
		t.Error("Expected error when releasing a released handle")
	}
}

// TestCreateFailure tests a scripted create failure.
func TestCreateFailure(t *testing.T) {
	player := NewPlayer()
	player.SetFailCreate("/bad.mp3", true)

	if _, err := player.Create("/bad.mp3"); err == nil {
		t.Error("Expected configured create failure")
	}
	if player.LiveResources() != 0 {
		t.Errorf("Expected 0 live resources after failed create, got %d", player.LiveResources())
	}
}

// TestStartPauseSeek tests playback state of a resource.
func TestStartPauseSeek(t *testing.T) {
	player := NewPlayer()
	player.SetDurationMS(60_000)

	handle, err := player.Create("/music/a.mp3")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := player.Start(handle); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !player.IsPlaying(handle) {
		t.Error("Expected resource to be playing after Start")
	}

	if err := player.Pause(handle); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if player.IsPlaying(handle) {
		t.Error("Expected resource to be paused after Pause")
	}

	if err := player.Seek(handle, 30_000); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	pos, err := player.PositionMS(handle)
	if err != nil {
		t.Fatalf("PositionMS failed: %v", err)
	}
	if pos != 30_000 {
		t.Errorf("Expected position 30000, got %d", pos)
	}

	dur, err := player.DurationMS(handle)
	if err != nil {
		t.Fatalf("DurationMS failed: %v", err)
	}
	if dur != 60_000 {
		t.Errorf("Expected duration 60000, got %d", dur)
	}
}

// TestSeekClamps tests that out-of-range seeks are clamped, not rejected.
func TestSeekClamps(t *testing.T) {
	player := NewPlayer()
	player.SetDurationMS(60_000)

	handle, _ := player.Create("/music/a.mp3")

	if err := player.Seek(handle, 120_000); err != nil {
		t.Fatalf("Seek past the end failed: %v", err)
	}
	pos, _ := player.PositionMS(handle)
	if pos != 60_000 {
		t.Errorf("Expected position clamped to 60000, got %d", pos)
	}

	if err := player.Seek(handle, -5); err != nil {
		t.Fatalf("Seek before the start failed: %v", err)
	}
	pos, _ = player.PositionMS(handle)
	if pos != 0 {
		t.Errorf("Expected position clamped to 0, got %d", pos)
	}
}

// TestInvalidHandle tests operations on unknown handles.
func TestInvalidHandle(t *testing.T) {
	player := NewPlayer()

	if err := player.Start(99); err == nil {
		t.Error("Expected error starting unknown handle")
	}
	if err := player.Pause(99); err == nil {
		t.Error("Expected error pausing unknown handle")
	}
	if _, err := player.PositionMS(99); err == nil {
		t.Error("Expected error reading position of unknown handle")
	}
}

// TestCompletionHandler tests the completion callback.
func TestCompletionHandler(t *testing.T) {
	player := NewPlayer()

	var completed domain.PlayerHandle
	player.SetCompletionHandler(func(handle domain.PlayerHandle) {
		completed = handle
	})

	handle, _ := player.Create("/music/a.mp3")
	if err := player.Start(handle); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	player.CompleteCurrent(handle)

	if completed != handle {
		t.Errorf("Expected completion for handle %d, got %d", handle, completed)
	}
	if player.IsPlaying(handle) {
		t.Error("Expected resource stopped after completion")
	}

	// Completing an unknown handle must not invoke the callback
	completed = domain.InvalidPlayerHandle
	player.CompleteCurrent(42)
	if completed != domain.InvalidPlayerHandle {
		t.Error("Completion callback fired for unknown handle")
	}
}
