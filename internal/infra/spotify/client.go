// Package spotify provides a client for the Spotify API.
package spotify

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/osa030/cornerpocket/internal/domain/track"
)

// IDPrefix namespaces Spotify track IDs inside a playlist.
const IDPrefix = "spotify:"

// Client is a Spotify API client.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Market       string
}

// New creates a new Spotify client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(spotifyauth.ScopePlaylistReadPrivate),
	)

	// Get HTTP client with auto-refresh capability
	httpClient := auth.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	market := cfg.Market
	if market == "" {
		market = "JP"
	}

	return &Client{
		client:     spotify.New(httpClient),
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// PlaylistTracks retrieves the playable tracks of a playlist.
// Only tracks with a preview clip are returned; the clip becomes the asset.
func (c *Client) PlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return nil, errors.New("invalid playlist URL")
	}

	var tracks []track.Track
	offset := 0
	limit := 100
	skipped := 0

	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(ctx, func() error {
			p, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
				spotify.Limit(limit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			// Episodes have no Track.
			ft := item.Track.Track
			if ft == nil || ft.ID == "" {
				continue
			}
			t, ok := convertTrack(ft)
			if !ok {
				skipped++
				continue
			}
			tracks = append(tracks, t)
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	if len(tracks) == 0 && skipped > 0 {
		return nil, errors.Newf("none of the %d playlist tracks has a preview", skipped)
	}
	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to a playlist track.
func convertTrack(t *spotify.FullTrack) (track.Track, bool) {
	if t.PreviewURL == "" {
		return track.Track{}, false
	}

	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}
	title := t.Name
	if len(artists) > 0 {
		title += " - " + strings.Join(artists, ", ")
	}

	return track.Track{
		ID:        IDPrefix + string(t.ID),
		Title:     title,
		AssetPath: t.PreviewURL,
	}, true
}

// retry retries an operation with a linear backoff.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			select {
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "retry aborted")
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status == 429 || apiErr.Status >= 500
	}

	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractPlaylistID extracts the playlist ID from a Spotify playlist URL or URI.
func extractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:playlist:") {
		return strings.TrimPrefix(input, "spotify:playlist:")
	}

	// https://open.spotify.com/playlist/ID or https://open.spotify.com/intl-XX/playlist/ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/") {
		parts := strings.Split(input, "/playlist/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	// Assume it's already a playlist ID
	return input
}
