package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/spotifai/deepagent/logging"
)

// Track is the reduced track representation handed to the oracle.
type Track struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Artists  []string `json:"artists"`
	Album    string   `json:"album"`
	Duration int      `json:"duration_ms"`
	Explicit bool     `json:"explicit"`
	URI      string   `json:"uri"`
	URL      string   `json:"url,omitempty"`
}

// Playlist is the reduced playlist representation handed to the oracle.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	Description   string `json:"description,omitempty"`
	TracksTotal   int    `json:"tracks_total"`
	Owner         string `json:"owner,omitempty"`
	URL           string `json:"url,omitempty"`
	URI           string `json:"uri"`
}

// PlaylistTrack extends Track with playlist membership metadata.
type PlaylistTrack struct {
	Track
	AddedAt string `json:"added_at,omitempty"`
	AddedBy string `json:"added_by,omitempty"`
}

// Manager exposes the playlist operations the agent's tools need on top of
// an authenticated Spotify client.
type Manager struct {
	client *spotifyapi.Client
	logger logging.Logger
}

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	Logger logging.Logger
}

// NewManager wraps an authenticated client. Obtain one via Authenticate.
func NewManager(client *spotifyapi.Client, optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{client: client, logger: opts.Logger}
}

// CurrentUser returns the authenticated user's display name.
func (m *Manager) CurrentUser(ctx context.Context) (string, error) {
	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("get current user: %w", err)
	}
	return user.DisplayName, nil
}

// SearchSong searches the catalog for tracks matching the query.
func (m *Manager) SearchSong(ctx context.Context, query string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 10
	}
	result, err := m.client.Search(ctx, query, spotifyapi.SearchTypeTrack, spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("search tracks %q: %w", query, err)
	}
	if result.Tracks == nil {
		return nil, nil
	}
	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, mapTrack(ft))
	}
	return tracks, nil
}

// CreatePlaylistResult summarizes a CreatePlaylist call.
type CreatePlaylistResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Public      bool   `json:"public"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	TracksAdded int    `json:"tracks_added"`
}

// CreatePlaylist creates a playlist for the current user and optionally adds
// the given tracks in batches of 100 (the API limit per call).
func (m *Manager) CreatePlaylist(ctx context.Context, name, description string, public bool, trackURIs []string) (*CreatePlaylistResult, error) {
	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	playlist, err := m.client.CreatePlaylistForUser(ctx, user.ID, name, description, public, false)
	if err != nil {
		return nil, fmt.Errorf("create playlist %q: %w", name, err)
	}

	added := 0
	if len(trackURIs) > 0 {
		ids, err := parseTrackIDs(trackURIs)
		if err != nil {
			return nil, err
		}
		for start := 0; start < len(ids); start += 100 {
			end := min(start+100, len(ids))
			if _, err := m.client.AddTracksToPlaylist(ctx, playlist.ID, ids[start:end]...); err != nil {
				return nil, fmt.Errorf("add tracks to playlist %s: %w", playlist.ID, err)
			}
			added += end - start
		}
	}

	m.logger.Info("playlist created", "playlist_id", string(playlist.ID), "tracks_added", added)
	return &CreatePlaylistResult{
		ID:          string(playlist.ID),
		Name:        playlist.Name,
		Public:      playlist.IsPublic,
		Description: playlist.Description,
		URL:         playlist.ExternalURLs["spotify"],
		TracksAdded: added,
	}, nil
}

// GetMyPlaylists lists the current user's playlists (owned and followed).
// When fetchAll is true it paginates until exhaustion.
func (m *Manager) GetMyPlaylists(ctx context.Context, limit int, fetchAll bool) ([]Playlist, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	page, err := m.client.CurrentUsersPlaylists(ctx, spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}

	var playlists []Playlist
	for {
		for _, item := range page.Playlists {
			owner := item.Owner.DisplayName
			if owner == "" {
				owner = item.Owner.ID
			}
			playlists = append(playlists, Playlist{
				ID:            string(item.ID),
				Name:          item.Name,
				Public:        item.IsPublic,
				Collaborative: item.Collaborative,
				Description:   item.Description,
				TracksTotal:   int(item.Tracks.Total),
				Owner:         owner,
				URL:           item.ExternalURLs["spotify"],
				URI:           string(item.URI),
			})
		}
		if !fetchAll {
			break
		}
		err = m.client.NextPage(ctx, page)
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("paginate playlists: %w", err)
		}
	}
	return playlists, nil
}

// AddTracksResult summarizes an AddTracksToPlaylist call.
type AddTracksResult struct {
	PlaylistID  string `json:"playlist_id"`
	TracksAdded int    `json:"tracks_added"`
}

// AddTracksToPlaylist appends tracks to a playlist in batches of 100.
func (m *Manager) AddTracksToPlaylist(ctx context.Context, playlistID string, trackURIs []string) (*AddTracksResult, error) {
	ids, err := parseTrackIDs(trackURIs)
	if err != nil {
		return nil, err
	}
	added := 0
	for start := 0; start < len(ids); start += 100 {
		end := min(start+100, len(ids))
		if _, err := m.client.AddTracksToPlaylist(ctx, spotifyapi.ID(playlistID), ids[start:end]...); err != nil {
			return nil, fmt.Errorf("add tracks to playlist %s: %w", playlistID, err)
		}
		added += end - start
	}
	return &AddTracksResult{PlaylistID: playlistID, TracksAdded: added}, nil
}

// RemoveTracksResult summarizes a RemoveTracksFromPlaylist call.
type RemoveTracksResult struct {
	PlaylistID      string `json:"playlist_id"`
	TracksRequested int    `json:"tracks_requested"`
	SnapshotID      string `json:"snapshot_id,omitempty"`
}

// RemoveTracksFromPlaylist removes all occurrences of the given tracks.
func (m *Manager) RemoveTracksFromPlaylist(ctx context.Context, playlistID string, trackURIs []string) (*RemoveTracksResult, error) {
	ids, err := parseTrackIDs(trackURIs)
	if err != nil {
		return nil, err
	}
	var snapshot string
	for start := 0; start < len(ids); start += 100 {
		end := min(start+100, len(ids))
		snap, err := m.client.RemoveTracksFromPlaylist(ctx, spotifyapi.ID(playlistID), ids[start:end]...)
		if err != nil {
			return nil, fmt.Errorf("remove tracks from playlist %s: %w", playlistID, err)
		}
		snapshot = snap
	}
	return &RemoveTracksResult{
		PlaylistID:      playlistID,
		TracksRequested: len(ids),
		SnapshotID:      snapshot,
	}, nil
}

// GetPlaylistTracks lists the tracks of a playlist, paginating when fetchAll
// is true. Episode items are skipped.
func (m *Manager) GetPlaylistTracks(ctx context.Context, playlistID string, limit int, fetchAll bool) ([]PlaylistTrack, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	page, err := m.client.GetPlaylistItems(ctx, spotifyapi.ID(playlistID), spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("list playlist items %s: %w", playlistID, err)
	}

	var tracks []PlaylistTrack
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, PlaylistTrack{
				Track:   mapTrack(*item.Track.Track),
				AddedAt: item.AddedAt,
				AddedBy: item.AddedBy.ID,
			})
		}
		if !fetchAll {
			break
		}
		err = m.client.NextPage(ctx, page)
		if errors.Is(err, spotifyapi.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("paginate playlist items %s: %w", playlistID, err)
		}
	}
	return tracks, nil
}

// ReorderResult summarizes a ReorderPlaylistItems call.
type ReorderResult struct {
	PlaylistID   string `json:"playlist_id"`
	RangeStart   int    `json:"range_start"`
	InsertBefore int    `json:"insert_before"`
	RangeLength  int    `json:"range_length"`
	SnapshotID   string `json:"snapshot_id,omitempty"`
}

// ReorderPlaylistItems moves the block starting at rangeStart (length
// rangeLength) so it sits before insertBefore.
func (m *Manager) ReorderPlaylistItems(ctx context.Context, playlistID string, rangeStart, insertBefore, rangeLength int, snapshotID string) (*ReorderResult, error) {
	if rangeLength <= 0 {
		rangeLength = 1
	}
	snap, err := m.client.ReorderPlaylistTracks(ctx, spotifyapi.ID(playlistID), spotifyapi.PlaylistReorderOptions{
		RangeStart:   spotifyapi.Numeric(rangeStart),
		RangeLength:  spotifyapi.Numeric(rangeLength),
		InsertBefore: spotifyapi.Numeric(insertBefore),
		SnapshotID:   snapshotID,
	})
	if err != nil {
		return nil, fmt.Errorf("reorder playlist %s: %w", playlistID, err)
	}
	return &ReorderResult{
		PlaylistID:   playlistID,
		RangeStart:   rangeStart,
		InsertBefore: insertBefore,
		RangeLength:  rangeLength,
		SnapshotID:   snap,
	}, nil
}

func mapTrack(ft spotifyapi.FullTrack) Track {
	artists := make([]string, 0, len(ft.Artists))
	for _, a := range ft.Artists {
		artists = append(artists, a.Name)
	}
	return Track{
		ID:       string(ft.ID),
		Name:     ft.Name,
		Artists:  artists,
		Album:    ft.Album.Name,
		Duration: int(ft.Duration),
		Explicit: ft.Explicit,
		URI:      string(ft.URI),
		URL:      ft.ExternalURLs["spotify"],
	}
}

// parseTrackIDs accepts spotify:track: URIs, open.spotify.com URLs and bare
// track ids, in any mix.
func parseTrackIDs(trackURIs []string) ([]spotifyapi.ID, error) {
	ids := make([]spotifyapi.ID, 0, len(trackURIs))
	for _, uri := range trackURIs {
		id, err := parseTrackID(uri)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseTrackID(uri string) (spotifyapi.ID, error) {
	s := strings.TrimSpace(uri)
	switch {
	case s == "":
		return "", fmt.Errorf("empty track reference")
	case strings.HasPrefix(s, "spotify:track:"):
		return spotifyapi.ID(strings.TrimPrefix(s, "spotify:track:")), nil
	case strings.Contains(s, "open.spotify.com/track/"):
		_, rest, _ := strings.Cut(s, "open.spotify.com/track/")
		id, _, _ := strings.Cut(rest, "?")
		if id == "" {
			return "", fmt.Errorf("malformed track url %q", uri)
		}
		return spotifyapi.ID(id), nil
	case strings.Contains(s, ":") || strings.Contains(s, "/"):
		return "", fmt.Errorf("unsupported track reference %q", uri)
	default:
		return spotifyapi.ID(s), nil
	}
}
