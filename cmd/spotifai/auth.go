package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spotifai/deepagent/config"
	"github.com/spotifai/deepagent/logging"
	"github.com/spotifai/deepagent/spotify"
)

// authOptionsFrom maps the loaded config onto the authorization flow options.
func authOptionsFrom(cfg *config.Config, logger logging.Logger) func(o *spotify.AuthOptions) {
	return func(o *spotify.AuthOptions) {
		o.RedirectHost = cfg.Spotify.RedirectHost
		o.RedirectPort = cfg.Spotify.RedirectPort
		o.OpenBrowser = cfg.Spotify.OpenBrowser
		o.Logger = logger
		if cfg.Spotify.TokenCachePath != "" {
			o.TokenCachePath = cfg.Spotify.TokenCachePath
		}
		if cfg.Spotify.AuthTimeout > 0 {
			o.Timeout = cfg.Spotify.AuthTimeout
		}
	}
}

// authCMD runs the Spotify authorization flow on its own, caching the token
// so a later chat session starts without the browser round trip.
func authCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Autoriza el acceso a Spotify y guarda el token",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Spotify.Validate(); err != nil {
				return err
			}

			logger := buildLogger(cfg)
			client, err := spotify.Authenticate(cmd.Context(), cfg.Spotify.ClientID, authOptionsFrom(cfg, logger))
			if err != nil {
				return fmt.Errorf("spotify auth: %w", err)
			}

			manager := spotify.NewManager(client)
			name, err := manager.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Autenticado como %s. Token guardado.\n", name)
			return nil
		},
	}
}
