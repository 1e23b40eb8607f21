package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spotifai/deepagent/internal/util"
)

// ErrMalformedOutput marks oracle output that could not be parsed into the
// requested structure. Callers distinguish it from transport failures to
// apply local recovery (e.g. the planner's default plan) instead of failing
// the turn.
var ErrMalformedOutput = errors.New("malformed structured output")

// GenerateStructured performs the structured-output oracle variant: it
// derives a JSON schema from T, constrains the request with it and parses
// the final response into a T. Parse failures are reported wrapped in
// ErrMalformedOutput; transport failures are returned as-is.
func GenerateStructured[T any](ctx context.Context, m Model, req Request, name string) (T, error) {
	var out T

	req.Stream = false
	req.ResponseSchema = &ResponseSchema{Name: name, Schema: util.CreateSchema(out)}

	final, err := GenerateText(ctx, m, req, nil)
	if err != nil {
		return out, err
	}

	raw := strings.TrimSpace(final.Text())
	raw = stripCodeFence(raw)
	if raw == "" {
		return out, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return out, nil
}

// stripCodeFence removes a surrounding markdown code fence, a common failure
// mode of providers without native JSON modes.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
