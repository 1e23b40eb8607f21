// Package deepagent provides a high-level façade over the staged agent
// engine (planner → researcher → executor → critic → finalizer) plus its
// supporting services: tools, prompts, session stores and logging. Most
// applications interact with this package by:
//  1. Creating a model adapter (model/openai or model/anthropic)
//  2. Creating an Agent via New() with the tools and stores it needs
//  3. Invoking turns and streaming the resulting chunks to the user
//
// The façade delegates orchestration to agent.Agent while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a Redis-backed state
// store and a structured logger.
package deepagent

import (
	"context"

	"github.com/spotifai/deepagent/agent"
	"github.com/spotifai/deepagent/core"
	"github.com/spotifai/deepagent/model"
)

// Agent is the staged orchestration engine. See package agent for details.
type Agent = agent.Agent

// Options configure an Agent.
type Options = agent.Options

// Chunk is one fragment of the caller-facing output stream.
type Chunk = core.Chunk

// ErrTraversalLimit marks a turn aborted at the stage-visit ceiling.
var ErrTraversalLimit = agent.ErrTraversalLimit

// New creates an Agent around the given oracle model.
func New(m model.Model, optFns ...func(o *Options)) (*Agent, error) {
	return agent.New(m, optFns...)
}

// InvokeSync runs one turn to completion and returns the final visible reply,
// discarding intermediate thinking chunks. It is a convenience for callers
// that do not stream.
func InvokeSync(ctx context.Context, a *Agent, query string) (string, error) {
	chunks, errCh := a.Invoke(ctx, query)

	var out []byte
	for chunk := range chunks {
		if chunk.IsText() {
			out = append(out, chunk.Content...)
		}
	}
	if err := <-errCh; err != nil {
		return "", err
	}
	return string(out), nil
}
