// Command spotifai is an interactive playlist assistant for Spotify driven
// by the deepagent orchestration engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "spotifai",
		Short:         "Asistente conversacional para gestionar tus playlists de Spotify",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "ruta del fichero de configuración")
	root.PersistentFlags().BoolP("verbose", "v", false, "muestra el razonamiento intermedio del agente")

	chat := chatCMD()
	root.AddCommand(chat, authCMD())
	root.RunE = chat.RunE // bare `spotifai` starts the chat

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
