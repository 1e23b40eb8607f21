package spotify

import (
	"context"
	"fmt"

	"github.com/spotifai/deepagent/logging"
	"github.com/spotifai/deepagent/tool"
)

// Tools returns the playlist tool set backed by the given manager, ready to
// be registered on an agent.
func Tools(m *Manager, optFns ...func(o *tool.FunctionToolOptions)) []tool.Tool {
	return []tool.Tool{
		newSearchSongTool(m, optFns...),
		newCreatePlaylistTool(m, optFns...),
		newGetMyPlaylistsTool(m, optFns...),
		newAddTracksTool(m, optFns...),
		newRemoveTracksTool(m, optFns...),
		newGetPlaylistTracksTool(m, optFns...),
		newReorderTool(m, optFns...),
	}
}

func newSearchSongTool(m *Manager, optFns ...func(o *tool.FunctionToolOptions)) tool.Tool {
	return tool.NewFunctionTool(
		"search_song",
		"Busca canciones en el catálogo de Spotify. Devuelve nombre, artistas, álbum y URI de cada resultado.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Texto de búsqueda, por ejemplo 'Bohemian Rhapsody Queen'",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Número máximo de resultados (por defecto 10)",
				},
			},
			"required": []string{"query"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return m.SearchSong(ctx, stringArg(args, "query"), intArg(args, "limit", 10))
		},
		optFns...,
	)
}

func newCreatePlaylistTool(m *Manager, optFns ...func(o *tool.FunctionToolOptions)) tool.Tool {
	return tool.NewFunctionTool(
		"create_playlist",
		"Crea una playlist para el usuario actual y opcionalmente añade canciones por URI.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Nombre de la playlist",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Descripción de la playlist",
				},
				"public": map[string]any{
					"type":        "boolean",
					"description": "Si la playlist es pública (por defecto false)",
				},
				"track_uris": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "URIs de canciones a añadir, por ejemplo spotify:track:...",
				},
			},
			"required": []string{"name"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return m.CreatePlaylist(ctx,
				stringArg(args, "name"),
				stringArg(args, "description"),
				boolArg(args, "public"),
				stringSliceArg(args, "track_uris"),
			)
		},
		optFns...,
	)
}

func newGetMyPlaylistsTool(m *Manager, optFns ...func(o *tool.FunctionToolOptions)) tool.Tool {
	return tool.NewFunctionTool(
		"get_my_playlists",
		"Lista las playlists del usuario actual, propias y seguidas.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Playlists por página, máximo 50 (por defecto 50)",
				},
				"fetch_all": map[string]any{
					"type":        "boolean",
					"description": "Si se deben recorrer todas las páginas (por defecto false)",
				},
			},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return m.GetMyPlaylists(ctx, intArg(args, "limit", 50), boolArg(args, "fetch_all"))
		},
		optFns...,
	)
}

func newAddTracksTool(m *Manager, optFns ...func(o *tool.FunctionToolOptions)) tool.Tool {
	return tool.NewFunctionTool(
		"add_tracks_to_playlist",
		"Añade canciones a una playlist existente. Acepta URIs, URLs o ids de canción.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"playlist_id": map[string]any{
					"type":        "string",
					"description": "Id de la playlist destino",
				},
				"track_uris": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Canciones a añadir",
				},
			},
			"required": []string{"playlist_id", "track_uris"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			uris := stringSliceArg(args, "track_uris")
			if len(uris) == 0 {
				return nil, fmt.Errorf("track_uris must not be empty")
			}
			return m.AddTracksToPlaylist(ctx, stringArg(args, "playlist_id"), uris)
		},
		optFns...,
	)
}

func newRemoveTracksTool(m *Manager, optFns ...func(o *tool.FunctionToolOptions)) tool.Tool {
	return tool.NewFunctionTool(
		"remove_tracks_from_playlist",
		"Elimina todas las apariciones de las canciones indicadas de una playlist.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"playlist_id": map[string]any{
					"type":        "string",
					"description": "Id de la playlist",
				},
				"track_uris": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Canciones a eliminar",
				},
			},
			"required": []string{"playlist_id", "track_uris"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			uris := stringSliceArg(args, "track_uris")
			if len(uris) == 0 {
				return nil, fmt.Errorf("track_uris must not be empty")
			}
			return m.RemoveTracksFromPlaylist(ctx, stringArg(args, "playlist_id"), uris)
		},
		optFns...,
	)
}

func newGetPlaylistTracksTool(m *Manager, optFns ...func(o *tool.FunctionToolOptions)) tool.Tool {
	return tool.NewFunctionTool(
		"get_playlist_tracks",
		"Lista las canciones de una playlist con su posición, fecha de adición y URI.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"playlist_id": map[string]any{
					"type":        "string",
					"description": "Id de la playlist",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Canciones por página, máximo 100 (por defecto 100)",
				},
				"fetch_all": map[string]any{
					"type":        "boolean",
					"description": "Si se deben recorrer todas las páginas (por defecto false)",
				},
			},
			"required": []string{"playlist_id"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return m.GetPlaylistTracks(ctx,
				stringArg(args, "playlist_id"),
				intArg(args, "limit", 100),
				boolArg(args, "fetch_all"),
			)
		},
		optFns...,
	)
}

func newReorderTool(m *Manager, optFns ...func(o *tool.FunctionToolOptions)) tool.Tool {
	return tool.NewFunctionTool(
		"reorder_playlist_items",
		"Reordena canciones dentro de una playlist moviendo un bloque a otra posición.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"playlist_id": map[string]any{
					"type":        "string",
					"description": "Id de la playlist",
				},
				"range_start": map[string]any{
					"type":        "integer",
					"description": "Posición inicial del bloque a mover (base 0)",
				},
				"insert_before": map[string]any{
					"type":        "integer",
					"description": "Posición delante de la cual insertar el bloque",
				},
				"range_length": map[string]any{
					"type":        "integer",
					"description": "Número de canciones del bloque (por defecto 1)",
				},
				"snapshot_id": map[string]any{
					"type":        "string",
					"description": "Snapshot de la playlist sobre el que aplicar el cambio",
				},
			},
			"required": []string{"playlist_id", "range_start", "insert_before"},
		},
		func(ctx context.Context, args map[string]any) (any, error) {
			return m.ReorderPlaylistItems(ctx,
				stringArg(args, "playlist_id"),
				intArg(args, "range_start", 0),
				intArg(args, "insert_before", 0),
				intArg(args, "range_length", 1),
				stringArg(args, "snapshot_id"),
			)
		},
		optFns...,
	)
}

// WithToolLogger propagates a logger to every tool built by Tools.
func WithToolLogger(logger logging.Logger) func(o *tool.FunctionToolOptions) {
	return func(o *tool.FunctionToolOptions) {
		o.Logger = logger
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// intArg tolerates float64, the type JSON decoding produces for numbers.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
