// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/cornerpocket/internal/api/connect"
	"github.com/osa030/cornerpocket/internal/api/mpris"
	"github.com/osa030/cornerpocket/internal/api/player/v1/playerv1connect"
	"github.com/osa030/cornerpocket/internal/api/ws"
	"github.com/osa030/cornerpocket/internal/app/check"
	"github.com/osa030/cornerpocket/internal/app/session"
	"github.com/osa030/cornerpocket/internal/app/source"
	"github.com/osa030/cornerpocket/internal/domain/playlist"
	"github.com/osa030/cornerpocket/internal/infra/assets"
	"github.com/osa030/cornerpocket/internal/infra/config"
	"github.com/osa030/cornerpocket/internal/infra/logger"
	"github.com/osa030/cornerpocket/internal/infra/media"
	"github.com/osa030/cornerpocket/internal/infra/spotify"
	"github.com/osa030/cornerpocket/internal/infra/store"
)

var (
	app        = kingpin.New("cornerpocket-server", "cornerpocket audio player server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	startCmd   = app.Command("start", "Start the server (default)").Default()
	recordPath = startCmd.Flag("record", "Record played audio into a WAV file").String()

	// list-checks command
	listChecksCmd = app.Command("list-checks", "List available asset checks and exit")

	// check command
	checkCmd = app.Command("check", "Build the playlist, check every asset and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listChecksCmd.FullCommand() {
		printChecks()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	switch command {
	case checkCmd.FullCommand():
		err = runCheck(cfg)
	default:
		err = run(cfg)
	}
	if err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// deps holds what both the server and the check command need.
type deps struct {
	library  *assets.Library
	client   *assets.Client
	playlist *playlist.Playlist
	checker  *check.Runner
}

func (d *deps) Close() {
	if err := d.library.Close(); err != nil {
		zlog.Warn().Msgf("Failed to close asset library: %v", err)
	}
}

// buildDeps opens the asset library and assembles the playlist.
func buildDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	library, err := assets.NewLibrary(cfg.Assets.Dir, cfg.Assets.Watch)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset library: %w", err)
	}

	client, err := assets.NewClient(cfg.AssetBaseURL(), assets.WithMaxBytes(cfg.Assets.MaxBytes))
	if err != nil {
		library.Close()
		return nil, fmt.Errorf("failed to create asset client: %w", err)
	}

	// Create Spotify client only when a source needs it
	var spotifyClient source.SpotifyClient
	if cfg.HasSource("spotify") {
		sc, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RefreshToken: cfg.Spotify.RefreshToken,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			library.Close()
			return nil, fmt.Errorf("failed to create Spotify client: %w", err)
		}
		spotifyClient = sc
	}

	chain, err := source.NewChainFromConfig(cfg, library, spotifyClient)
	if err != nil {
		library.Close()
		return nil, fmt.Errorf("invalid playlist sources: %w", err)
	}
	pl, err := chain.Build(ctx, cfg.Playlist.Name)
	if err != nil {
		library.Close()
		return nil, fmt.Errorf("failed to build playlist: %w", err)
	}

	checkChain, err := check.NewChainFromConfig(cfg)
	if err != nil {
		library.Close()
		return nil, fmt.Errorf("invalid check config: %w", err)
	}

	return &deps{
		library:  library,
		client:   client,
		playlist: pl,
		checker:  check.NewRunner(checkChain, client),
	}, nil
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	// Media backend
	backendOpts := []media.Option{media.WithInterval(cfg.TimeUpdateInterval())}
	if cfg.Playback.RequireGesture {
		backendOpts = append(backendOpts, media.WithGestureRequired())
	}
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			return fmt.Errorf("failed to create recording: %w", err)
		}
		backendOpts = append(backendOpts, media.WithSink(media.NewWAVSink(f, 44100)))
		zlog.Info().Msgf("Recording playback to %s", *recordPath)
	}
	backend := media.NewBackend(d.client, backendOpts...)
	defer func() {
		if err := backend.Close(); err != nil {
			zlog.Warn().Msgf("Failed to close media backend: %v", err)
		}
	}()

	// Create session manager
	sessionOpts := []session.Option{session.WithChecker(d.checker)}
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()
		sessionOpts = append(sessionOpts, session.WithStore(st))
	}
	sessionMgr, err := session.NewManager(cfg, d.playlist, backend, sessionOpts...)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	// Create HTTP mux
	mux := http.NewServeMux()
	mux.Handle(cfg.Assets.Prefix, d.library.Handler(cfg.Assets.Prefix))

	// Register services
	playerPath, playerHandler := playerv1connect.NewPlayerServiceHandler(
		apiconnect.NewPlayerService(sessionMgr),
		connect.WithInterceptors(apiconnect.NewControlAuthInterceptor(cfg.Server.ControlToken)),
	)
	mux.Handle(playerPath, playerHandler)
	mux.Handle("/ws", ws.Handler(sessionMgr))

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Relative assets resolve against this server, so it must listen before the first load
	<-serverStartedCh
	time.Sleep(100 * time.Millisecond)

	if err := sessionMgr.Start(ctx); err != nil {
		sessionMgr.Close()
		return fmt.Errorf("failed to start session: %w", err)
	}

	// Execute startup hook if configured (after server is running)
	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	checkCtx, stopChecks := context.WithCancel(ctx)
	defer stopChecks()
	go watchAssets(checkCtx, d)

	// MPRIS is best effort: there may be no session bus
	var mprisServer *mpris.Server
	if cfg.MPRIS.Enabled {
		mprisServer = mpris.NewServer(cfg.MPRIS.Name, sessionMgr, func(p string) string {
			u, err := d.client.Resolve(p)
			if err != nil {
				return p
			}
			return u
		})
		if err := mprisServer.Start(ctx); err != nil {
			zlog.Warn().Msgf("MPRIS disabled: %v", err)
			mprisServer = nil
		}
	}

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if mprisServer != nil {
		if err := mprisServer.Close(); err != nil {
			zlog.Warn().Msgf("Failed to close MPRIS: %v", err)
		}
	}

	// Close session manager first to terminate active connections/streams
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	// Execute shutdown hook if configured
	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return runErr
}

// watchAssets checks the playlist once at startup and again whenever the
// asset directory changes.
func watchAssets(ctx context.Context, d *deps) {
	for {
		report, err := d.checker.Run(ctx, d.playlist)
		if err != nil {
			if ctx.Err() == nil {
				zlog.Warn().Msgf("Asset check failed: %v", err)
			}
		} else if !report.OK() {
			zlog.Warn().Msgf("Asset check: %d of %d tracks failed", report.Failed, len(report.Tracks))
		}

		select {
		case <-ctx.Done():
			return
		case _, ok := <-d.library.Changes():
			if !ok {
				return
			}
			zlog.Info().Msg("Asset library changed, re-checking playlist")
		}
	}
}

// runCheck serves the asset library just long enough to check every track.
func runCheck(cfg *config.Config) error {
	ctx := context.Background()

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	mux := http.NewServeMux()
	mux.Handle(cfg.Assets.Prefix, d.library.Handler(cfg.Assets.Prefix))
	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error().Msgf("Asset server error: %v", err)
		}
	}()
	defer server.Close()
	time.Sleep(100 * time.Millisecond)

	report, err := d.checker.Run(ctx, d.playlist)
	if err != nil {
		return fmt.Errorf("asset check failed: %w", err)
	}

	fmt.Printf("Playlist %q: %d tracks\n", d.playlist.Name(), d.playlist.Len())
	for _, t := range report.Tracks {
		status := "ok"
		if !t.Passed {
			status = fmt.Sprintf("FAIL %s: %s", t.Code, t.Detail)
		}
		fmt.Printf("  %3d  %-40s %s\n", t.Index, t.Title, status)
	}
	fmt.Printf("Passed: %d, Failed: %d\n", report.Passed, report.Failed)

	if !report.OK() {
		return fmt.Errorf("%d assets failed", report.Failed)
	}
	return nil
}

// printChecks prints available asset checks.
func printChecks() {
	fmt.Println("Available Checks:")
	registry := check.GetRegistered()
	for _, name := range check.RegisteredNames() {
		c := registry[name]()
		codes := strings.Join(c.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", c.Name(), c.Description(), codes)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
