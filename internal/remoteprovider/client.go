package remoteprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/playlistbridge/playlistbridge/internal/config"
	"github.com/playlistbridge/playlistbridge/internal/logging"
)

// Client is the default PlaylistProvider implementation: a resty-backed
// client-credentials OAuth client against a Spotify-shaped playlist API,
// grounded on kirbs-btw-spotify-playlist-dataset's token-then-request
// flow. It is a thin reference implementation, not a hardened multi-
// provider SDK — swapping providers means swapping this file.
type Client struct {
	http *resty.Client
	cfg  config.RemoteProviderConfig

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.RemoteProviderConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)
	return &Client{http: http, cfg: cfg}
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody("grant_type=client_credentials").
		Post("/api/token")
	if err != nil {
		return "", fmt.Errorf("fetch remote provider token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch remote provider token: status %d", resp.StatusCode())
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decode remote provider token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("remote provider token response missing access_token")
	}

	c.token = body.AccessToken
	expiresIn := body.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn-30) * time.Second)
	return c.token, nil
}

// ListPlaylists fetches the user's playlists returned by a single request;
// further pages the provider reports are not requested.
func (c *Client) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&body).
		Get("/v1/me/playlists")
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list playlists: status %d", resp.StatusCode())
	}

	out := make([]Playlist, 0, len(body.Items))
	for _, item := range body.Items {
		out = append(out, Playlist{ID: item.ID, Name: item.Name})
	}
	return out, nil
}

// GetPlaylistTracks fetches the playlist tracks returned by a single
// request; further pages the provider reports are not requested. Items
// without a track id (local files, removed tracks) are skipped.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	var body struct {
		Items []struct {
			Track struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Album   struct{ Name string `json:"name"` } `json:"album"`
				Artists []struct{ Name string `json:"name"` } `json:"artists"`
				DurationMS   int64             `json:"duration_ms"`
				Popularity   int               `json:"popularity"`
				ExternalURLs map[string]string `json:"external_urls"`
			} `json:"track"`
		} `json:"items"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&body).
		Get(fmt.Sprintf("/v1/playlists/%s/tracks", playlistID))
	if err != nil {
		return nil, fmt.Errorf("get playlist tracks: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get playlist tracks: status %d", resp.StatusCode())
	}

	out := make([]Track, 0, len(body.Items))
	for _, item := range body.Items {
		artists := make([]string, 0, len(item.Track.Artists))
		for _, a := range item.Track.Artists {
			artists = append(artists, a.Name)
		}
		if item.Track.ID == "" {
			logging.Debug().Msg("skipping playlist item with no track id (local file or removed track)")
			continue
		}
		out = append(out, Track{
			ID:           item.Track.ID,
			Name:         item.Track.Name,
			Artists:      artists,
			Album:        item.Track.Album.Name,
			DurationMS:   item.Track.DurationMS,
			Popularity:   item.Track.Popularity,
			ExternalURLs: item.Track.ExternalURLs,
		})
	}
	return out, nil
}

var _ PlaylistProvider = (*Client)(nil)
