package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/spotifai/deepagent/agent"
	"github.com/spotifai/deepagent/config"
	"github.com/spotifai/deepagent/logging"
	"github.com/spotifai/deepagent/model"
	anthropicmodel "github.com/spotifai/deepagent/model/anthropic"
	openaimodel "github.com/spotifai/deepagent/model/openai"
	"github.com/spotifai/deepagent/session"
	"github.com/spotifai/deepagent/spotify"
)

const (
	greeting = "¡Hola! Soy tu asistente de IA para ayudarte a gestionar tus playlist de Spotify. ¿En qué puedo ayudarte hoy?"
	exitWord = "salir"
)

func chatCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Inicia la conversación con el asistente",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if verbose {
				cfg.Agent.Verbose = true
			}
			return runChat(cmd.Context(), cfg)
		},
	}
}

func runChat(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := buildLogger(cfg)

	if err := cfg.Spotify.Validate(); err != nil {
		return err
	}
	client, err := spotify.Authenticate(ctx, cfg.Spotify.ClientID, authOptionsFrom(cfg, logger))
	if err != nil {
		return fmt.Errorf("spotify auth: %w", err)
	}
	manager := spotify.NewManager(client, func(o *spotify.ManagerOptions) {
		o.Logger = logger
	})

	humanName := cfg.Agent.HumanName
	if humanName == "" {
		if name, err := manager.CurrentUser(ctx); err == nil && name != "" {
			humanName = name
		}
	}

	oracle, err := buildModel(cfg)
	if err != nil {
		return err
	}

	ag, err := agent.New(oracle, func(o *agent.Options) {
		o.Domain = cfg.Agent.Domain
		o.Tone = cfg.Agent.Tone
		o.Tools = spotify.Tools(manager, spotify.WithToolLogger(logger))
		o.ThreadID = cfg.Agent.ThreadID
		o.SummarizeThreshold = cfg.Agent.SummarizeThreshold
		o.MaxStageVisits = cfg.Agent.MaxStageVisits
		o.StateStore = buildStore(cfg)
		o.Logger = logger
		o.Verbose = cfg.Agent.Verbose
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n🤖 %s\n", greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n🙂 > ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, exitWord) {
			break
		}
		if err := runTurn(ctx, ag, query); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			fmt.Fprintf(os.Stderr, "\n⚠️  %v\n", err)
		}
	}

	if humanName != "" {
		fmt.Printf("\n🤖 ¡Chao %s!\n", humanName)
	} else {
		fmt.Println("\n🤖 ¡Chao!")
	}
	return scanner.Err()
}

// runTurn streams one agent turn to the terminal. Thinking fragments go on
// their own lines; text fragments print inline as they arrive.
func runTurn(ctx context.Context, ag *agent.Agent, query string) error {
	chunks, errCh := ag.Invoke(ctx, query)

	fmt.Print("\n🤖 ")
	inText := false
	for chunk := range chunks {
		switch {
		case chunk.IsText():
			fmt.Print(chunk.Content)
			inText = true
		case chunk.IsThinking():
			if inText {
				fmt.Println()
				inText = false
			}
			fmt.Print(chunk.Content)
			if !strings.HasSuffix(chunk.Content, "\n") {
				fmt.Println()
			}
		}
	}
	fmt.Println()
	return <-errCh
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch strings.ToLower(cfg.Model.Provider) {
	case "openai":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Model.Name != "" {
				o.Model = cfg.Model.Name
			}
			o.Temperature = cfg.Model.Temperature
			if cfg.Model.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(cfg.Model.MaxTokens)
			}
		}), nil
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Model.Name != "" {
				o.Model = anthropic.Model(cfg.Model.Name)
			}
			o.Temperature = cfg.Model.Temperature
			if cfg.Model.MaxTokens > 0 {
				o.MaxTokens = int64(cfg.Model.MaxTokens)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q (want openai or anthropic)", cfg.Model.Provider)
	}
}

func buildStore(cfg *config.Config) session.StateStore {
	if cfg.Storage.RedisAddr == "" {
		return session.NewInMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.RedisAddr,
		Password: cfg.Storage.RedisPassword,
		DB:       cfg.Storage.RedisDB,
	})
	return session.NewRedisStore(client, func(o *session.RedisStoreOptions) {
		if cfg.Storage.KeyPrefix != "" {
			o.KeyPrefix = cfg.Storage.KeyPrefix
		}
		if cfg.Storage.TTLHours > 0 {
			o.TTL = time.Duration(cfg.Storage.TTLHours) * time.Hour
		}
	})
}

func buildLogger(cfg *config.Config) logging.Logger {
	level := logging.LogLevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = logging.LogLevelDebug
	case "warn", "warning":
		level = logging.LogLevelWarn
	case "error":
		level = logging.LogLevelError
	}
	format := cfg.Logging.Format
	if format == "" {
		format = "text"
	}
	return logging.NewSlogLogger(level, format, false).WithThread(cfg.Agent.ThreadID, "")
}
