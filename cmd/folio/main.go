package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/folio/internal/api"
	"github.com/mmcdole/folio/internal/catalog"
	"github.com/mmcdole/folio/internal/config"
	"github.com/mmcdole/folio/internal/gallery"
	"github.com/mmcdole/folio/internal/lightbox"
	"github.com/mmcdole/folio/internal/likes"
	"github.com/mmcdole/folio/internal/log"
	"github.com/mmcdole/folio/internal/reveal"
	"github.com/mmcdole/folio/internal/store"
	"github.com/mmcdole/folio/internal/telemetry"
	"github.com/mmcdole/folio/internal/tui"
	"github.com/mmcdole/folio/internal/tui/styles"
	"github.com/mmcdole/folio/internal/viewer"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var showVersion bool
	var clearCache bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&clearCache, "clear-cache", false, "remove cached catalog data and images, then exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("folio %s\n", Version)
		return
	}

	if err := run(clearCache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(clearCache bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if clearCache {
		if err := config.ClearCache(config.ExpandHome(cfg.Cache.Dir)); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	}

	logger, logFile, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	} else {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting folio", "version", Version)

	shutdown, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	if !cfg.IsConfigured() {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("no API URL configured; set FOLIO_API_URL or run folio in a terminal")
		}
		return runSetupFlow(cfg)
	}

	cacheDir := config.ExpandHome(cfg.Cache.Dir)
	st, err := store.Open(cacheDir, cfg.API.URL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	if !st.Persistent() {
		logger.Warn("running without persistent storage; likes last for this session only")
	}

	viewerID, err := store.ViewerID(st)
	if err != nil {
		logger.Warn("viewer id not persisted", "error", err)
	}

	client, err := api.NewClient(cfg.API.URL, viewerID, cfg.API.Timeout, logger)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	// Gallery state and the services observing it
	likeSet := likes.NewSet(st, logger)
	coord := gallery.NewCoordinator(client, likeSet, cfg.InitialQuery(), logger)
	toggler := likes.NewToggler(client, coord, likeSet, logger)
	navigator := lightbox.NewNavigator(coord, toggler, logger)
	coord.Subscribe(navigator)
	loadMore := gallery.NewLoadMore(coord, logger)
	catalogSvc := catalog.NewService(client, st, cfg.Cache.CatalogTTL, logger)

	imageDir := ""
	if cacheDir != "" {
		imageDir = filepath.Join(cacheDir, "images")
	}
	prefetcher, err := reveal.NewPrefetcher(imageDir, cfg.Cache.PrefetchWorkers, client.HTTPClient(), logger)
	if err != nil {
		return fmt.Errorf("failed to create image cache: %w", err)
	}
	defer prefetcher.Close()

	model := tui.NewModel(tui.Services{
		Gallery:   coord,
		LoadMore:  loadMore,
		Likes:     likeSet,
		Toggler:   toggler,
		Navigator: navigator,
		Catalog:   catalogSvc,
		Tracker:   reveal.NewTracker(cfg.Gallery.RevealMargin, logger),
		Prefetch:  prefetcher,
		Viewer:    viewer.New(cfg.Viewer.Command, cfg.Viewer.Args, logger),
		Logger:    logger,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	logger.Info("starting TUI", "api", client.BaseURL())

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for the API URL on first run
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Folio!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	var apiURL string
	for {
		fmt.Print("Enter the portfolio API URL (e.g., https://photos.example.com/api): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		apiURL = strings.TrimSpace(input)

		if apiURL == "" {
			fmt.Println("API URL cannot be empty. Please try again.")
			continue
		}

		fmt.Println()
		if err := pingWithSpinner(apiURL, cfg.API.Timeout); err != nil {
			fmt.Printf("\n✗ Could not reach the API: %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}
		break
	}

	cfg.API.URL = apiURL
	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run folio again to start browsing.")

	return nil
}

// pingWithSpinner checks the API with a visual spinner
func pingWithSpinner(apiURL string, timeout time.Duration) error {
	client, err := api.NewClient(apiURL, "", timeout, log.NullLogger())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- client.Ping(ctx)
	}()

	frame := 0
	fmt.Printf("\r%s Contacting API...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Connected to %s\n", client.BaseURL())
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Contacting API...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("timed out")
		}
	}
}
