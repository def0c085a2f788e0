// Package main is the production entry point for the MusicPlayer service.
//
// MusicPlayer is a headless music playback core with clean architecture:
// - Event-driven communication (no callbacks)
// - Dependency injection for testability
// - Repository pattern for data persistence
//
// Build:
//
//	go build -o build/musicplayer ./cmd
//
// Run:
//
//	./build/musicplayer
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kazu-1234/MusicPlayer/internal/app"
)

func main() {
	// Create default configuration
	config := app.DefaultConfig()

	// Create the application with dependency injection
	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		fmt.Println("\nShutting down...")
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
		fmt.Println("Shutdown complete")
	}()

	// Run application (blocks until interrupted)
	if err := application.Run(); err != nil {
		log.Printf("Application error: %v", err)
	}

	fmt.Println("Application exited cleanly")
}
