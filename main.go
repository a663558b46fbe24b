// cortex TUI - A terminal interface for local LLM chat with web and
// academic retrieval.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	core "github.com/jeranaias/cortex-tui/internal/chat"
	"github.com/jeranaias/cortex-tui/internal/config"
	"github.com/jeranaias/cortex-tui/internal/ollama"
	"github.com/jeranaias/cortex-tui/internal/search"
	"github.com/jeranaias/cortex-tui/internal/storage"
	chatui "github.com/jeranaias/cortex-tui/internal/ui/chat"
	"github.com/jeranaias/cortex-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	args := os.Args[1:]
	for i, arg := range args {
		switch arg {
		case "--version", "-v":
			fmt.Printf("cortex %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "--import":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Usage: cortex --import <file>")
				os.Exit(2)
			}
			if err := importChat(args[i+1]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "cortex is an interactive terminal application; stdout is not a terminal")
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires configuration, storage, the Ollama client, retrieval, and
// the session layer into the Bubble Tea program.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.EnsureDir(); err != nil {
		return fmt.Errorf("prepare config directory: %w", err)
	}

	// Ollama client, auto-started when configured.
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
		Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	})
	if cfg.Ollama.AutoStart {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := client.EnsureRunning(ctx)
		cancel()
		if err != nil {
			// The UI surfaces connection errors per request; startup
			// continues so the user can fix Ollama without restarting.
			fmt.Fprintf(os.Stderr, "Warning: Ollama is not reachable: %v\n", err)
		}
	}

	// Chat persistence.
	dbPath, err := databasePath(cfg)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open chat database: %w", err)
	}
	defer store.Close()

	// Retrieval augmentation for the internet and academic modes.
	var controller *core.Controller
	gen := core.NewOllamaGenerator(client)
	if cfg.Search.Enabled {
		svc := search.NewService(&search.ServiceConfig{
			DuckDuckGoURL:      cfg.Search.DuckDuckGoURL,
			SemanticScholarURL: cfg.Search.SemanticScholarURL,
			ArxivURL:           cfg.Search.ArxivURL,
			CrossrefURL:        cfg.Search.CrossrefURL,
			Timeout:            time.Duration(cfg.Search.TimeoutSecs) * time.Second,
		})
		controller = core.NewController(gen, store, search.NewAugmenter(svc))
	} else {
		controller = core.NewController(gen, store, nil)
	}

	manager := core.NewManager(store, cfg.Generation)

	// Live-reload generation parameters when the config file changes.
	// New sessions pick them up; in-flight sessions are untouched.
	cfgPath, err := config.Path()
	if err == nil {
		watcher, werr := config.NewWatcher(cfgPath, func(next *config.Config) {
			manager.SetDefaults(next.Generation)
		})
		if werr == nil && watcher.Watch() == nil {
			defer watcher.Close()
		}
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	m := chatui.New(cfg, theme, manager, controller, client, store)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// databasePath resolves the chat database location from config,
// falling back to the default under ~/.cortex.
func databasePath(cfg *config.Config) (string, error) {
	if cfg.Storage.DatabasePath != "" {
		return cfg.Storage.DatabasePath, nil
	}
	return storage.DefaultPath()
}

// importChat loads an exported chat document into the configured
// database. Runs without a terminal so exports can be moved between
// machines from scripts.
func importChat(exportPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	dbPath, err := databasePath(cfg)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	return runImport(dbPath, exportPath)
}

// runImport imports one export file into the database at dbPath and
// reports the chat it created.
func runImport(dbPath, exportPath string) error {
	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open chat database: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chat, err := store.ImportChatFromFile(ctx, exportPath)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %q (chat %s)\n", chat.Title, chat.ID)
	return nil
}
