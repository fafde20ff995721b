// Package main provides the Spotify authentication tool used to obtain the
// refresh token for spotify playlist sources.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/osa030/cornerpocket/internal/infra/logger"
)

var (
	app          = kingpin.New("cornerpocket-auth", "Spotify authentication tool for cornerpocket")
	clientID     = app.Flag("client-id", "Spotify Client ID").Envar("SPOTIFY_CLIENT_ID").Required().String()
	clientSecret = app.Flag("client-secret", "Spotify Client Secret").Envar("SPOTIFY_CLIENT_SECRET").Required().String()
	port         = app.Flag("port", "Callback server port").Default("8888").Int()
	timeout      = app.Flag("timeout", "How long to wait for authorization").Default("5m").Duration()
)

type callbackResult struct {
	token *oauth2.Token
	err   error
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	if _, err := logger.Init(logger.Config{Output: "stderr", Level: "info"}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", *port)
	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(redirectURI),
		spotifyauth.WithClientID(*clientID),
		spotifyauth.WithClientSecret(*clientSecret),
		spotifyauth.WithScopes(spotifyauth.ScopePlaylistReadPrivate),
	)
	state := uuid.NewString()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if st := r.FormValue("state"); st != state {
			http.Error(w, "State mismatch", http.StatusForbidden)
			zlog.Warn().Msgf("auth: state mismatch: got=%s", st)
			return
		}
		token, err := auth.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "Failed to get token", http.StatusForbidden)
			results <- callbackResult{err: err}
			return
		}
		fmt.Fprintln(w, "cornerpocket: authorization complete. You can close this window.")
		results <- callbackResult{token: token}
	})

	server := &http.Server{Addr: fmt.Sprintf(":%d", *port), Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Msgf("auth: failed to start callback server: %v", err)
		}
	}()

	fmt.Println("Please visit the following URL to authorize cornerpocket:")
	fmt.Println()
	fmt.Println(auth.AuthURL(state))
	fmt.Println()
	fmt.Println("Waiting for authorization...")

	var res callbackResult
	select {
	case res = <-results:
	case <-time.After(*timeout):
		res.err = fmt.Errorf("no authorization within %s", *timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Warn().Msgf("auth: failed to shutdown callback server: %v", err)
	}

	if res.err != nil {
		zlog.Error().Msgf("auth: %v", res.err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("=== Authorization Successful ===")
	fmt.Println()
	fmt.Println("Add this to your config.yaml:")
	fmt.Println()
	fmt.Println("spotify:")
	fmt.Printf("  refresh_token: %q\n", res.token.RefreshToken)
	fmt.Println()
	fmt.Println("Or set as environment variable:")
	fmt.Printf("export SPOTIFY_REFRESH_TOKEN=%q\n", res.token.RefreshToken)
}
