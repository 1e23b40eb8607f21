package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spotifai/deepagent/core"
	"github.com/spotifai/deepagent/logging"
	"github.com/spotifai/deepagent/model"
	"github.com/spotifai/deepagent/prompt"
	"github.com/spotifai/deepagent/session"
	"github.com/spotifai/deepagent/tool"
)

// Metrics hooks the configured Logger may additionally implement
// (DeepAgentLogger does). Loggers without them still receive the
// plain Debug/Warn/Error diagnostics.
type stageMetrics interface {
	LogStage(stage string, visits int, dur time.Duration, success bool, err error)
}

type toolMetrics interface {
	LogToolCall(tool string, dur time.Duration, success bool, err error)
}

type oracleMetrics interface {
	LogOracleCall(model string, dur time.Duration, success bool, err error)
}

// ErrTraversalLimit marks a turn aborted because the stage-visit ceiling was
// reached. It indicates a routing defect or runaway plan growth and is always
// fatal to the turn.
var ErrTraversalLimit = errors.New("traversal ceiling exceeded")

// Options configure an Agent. All fields have working defaults except the
// model, which is a required constructor argument.
type Options struct {
	// Domain describes the agent's area of expertise, injected into prompts.
	Domain string
	// Tone sets the agent's communication style, injected into prompts.
	Tone string
	// Tools the executor may request. Exposed to the oracle by name + schema.
	Tools []tool.Tool
	// ThreadID scopes state persistence to one logical conversation.
	ThreadID string
	// SummarizeThreshold triggers history compaction when the message count
	// exceeds it.
	SummarizeThreshold int
	// MaxStageVisits bounds total stage visits per turn; exceeding it fails
	// the turn with ErrTraversalLimit.
	MaxStageVisits int
	// ChunkBufferSize sizes the caller-facing chunk channel.
	ChunkBufferSize int
	// StateStore persists conversation state between turns.
	StateStore session.StateStore
	// Logger receives structured diagnostics.
	Logger logging.Logger
	// Verbose lowers the bar for what the translator surfaces as THINKING.
	Verbose bool
}

// Agent drives the execution graph for one conversation thread.
type Agent struct {
	model        model.Model
	registry     *tool.Registry
	opts         Options
	systemPrompt string
	logger       logging.Logger
}

// New creates an Agent around the given oracle model.
func New(m model.Model, optFns ...func(o *Options)) (*Agent, error) {
	if m == nil {
		return nil, fmt.Errorf("agent: model must not be nil")
	}

	opts := Options{
		Domain:             "asistencia general",
		Tone:               "cercano y directo",
		ThreadID:           "1",
		SummarizeThreshold: 10,
		MaxStageVisits:     50,
		ChunkBufferSize:    64,
		StateStore:         session.NewInMemoryStore(),
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SummarizeThreshold <= 0 {
		return nil, fmt.Errorf("agent: SummarizeThreshold must be positive, got %d", opts.SummarizeThreshold)
	}
	if opts.MaxStageVisits <= 0 {
		return nil, fmt.Errorf("agent: MaxStageVisits must be positive, got %d", opts.MaxStageVisits)
	}

	registry := tool.NewRegistry(opts.Tools...)

	systemPrompt, err := prompt.Render(prompt.System, map[string]any{
		"domain": opts.Domain,
		"tools":  toolsDescription(registry),
		"tone":   opts.Tone,
	})
	if err != nil {
		return nil, fmt.Errorf("agent: render system prompt: %w", err)
	}

	return &Agent{
		model:        m,
		registry:     registry,
		opts:         opts,
		systemPrompt: systemPrompt,
		logger:       opts.Logger,
	}, nil
}

// toolsDescription renders one "- name: description" line per registered tool.
func toolsDescription(registry *tool.Registry) string {
	tools := registry.All()
	if len(tools) == 0 {
		return ""
	}
	lines := make([]string, 0, len(tools))
	for _, t := range tools {
		lines = append(lines, fmt.Sprintf("- %s: %s", t.Name(), t.Description()))
	}
	return strings.Join(lines, "\n")
}

// toolDefinitions exposes the registry in the oracle's declaration format.
func (a *Agent) toolDefinitions() []model.ToolDefinition {
	tools := a.registry.All()
	if len(tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Invoke runs one turn for the given query and returns the caller-facing
// chunk stream plus a terminal error channel.
//
// Cancellation contract: cancelling ctx cancels any in-flight oracle or tool
// call and stops the turn; the chunk channel is then closed without further
// chunks. Merely abandoning the chunk channel without cancelling ctx does not
// stop the turn: the producer blocks once the buffer fills, so callers that
// stop reading early must cancel ctx to release the turn's resources. Both
// channels close when the turn ends; on fatal failure the error channel
// carries exactly one error.
func (a *Agent) Invoke(ctx context.Context, query string) (<-chan core.Chunk, <-chan error) {
	chunks := make(chan core.Chunk, a.opts.ChunkBufferSize)
	errCh := make(chan error, 1)

	events := make(chan core.Event, a.opts.ChunkBufferSize)

	// Producer: walk the graph, pushing every internal event in order.
	go func() {
		defer close(events)
		if err := a.runTurn(ctx, query, events); err != nil {
			a.logger.Error("turn failed", "thread_id", a.opts.ThreadID, "error", err.Error())
			errCh <- err
		}
	}()

	// Consumer: translate events into the public chunk stream.
	go func() {
		defer close(chunks)
		defer close(errCh)
		for ev := range events {
			chunk, ok := translate(ev, a.opts.Verbose)
			if !ok {
				continue
			}
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				// Drain remaining events so the producer can finish.
				for range events {
				}
				return
			}
		}
	}()

	return chunks, errCh
}

// runTurn loads the thread state, appends the query, drives the stage
// machine to completion and persists the resulting state.
func (a *Agent) runTurn(ctx context.Context, query string, events chan<- core.Event) error {
	st, err := a.opts.StateStore.Load(ctx, a.opts.ThreadID)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	if len(st.Messages) == 0 {
		st.Messages = append(st.Messages, core.NewSystemMessage(a.systemPrompt))
	}
	st.Messages = append(st.Messages, core.NewUserMessage(query))
	st.Final = nil

	emit := func(ev core.Event) error {
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	visits := 0
	stage := core.StagePlanner
	for {
		visits++
		if visits > a.opts.MaxStageVisits {
			return fmt.Errorf("%w after %d stage visits", ErrTraversalLimit, a.opts.MaxStageVisits)
		}

		a.logger.Debug("stage enter", "stage", string(stage), "visit", visits)
		stageStart := time.Now()

		var delta core.Delta
		switch stage {
		case core.StagePlanner:
			delta, err = a.plan(ctx, st, query, emit)
		case core.StageResearcher:
			delta, err = a.research(ctx, st, emit)
		case core.StageSummarizer:
			delta, err = a.summarize(ctx, st, emit)
		case core.StageExecutor:
			delta, err = a.execute(ctx, st, emit)
		case core.StageTools:
			delta, err = a.runTools(ctx, st, emit)
		case core.StageCritic:
			delta, err = a.critic(ctx, st, emit)
		case core.StageFinalizer:
			delta, err = a.finalize(ctx, st, emit)
		default:
			return fmt.Errorf("unknown stage %q", stage)
		}
		if sm, ok := a.logger.(stageMetrics); ok {
			sm.LogStage(string(stage), visits, time.Since(stageStart), err == nil, err)
		}
		if err != nil {
			return fmt.Errorf("stage %s: %w", stage, err)
		}
		st.Apply(delta)

		next, done := route(stage, st, a.opts.SummarizeThreshold)
		if done {
			break
		}
		stage = next
	}

	if err := a.opts.StateStore.Save(ctx, a.opts.ThreadID, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
