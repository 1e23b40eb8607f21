// Package prompt holds the embedded prompt templates that frame every oracle
// call. Templates are markdown files rendered with a small helper set (see
// internal/util.RenderTemplate); the user-facing text is Spanish, matching
// the language the agent speaks.
package prompt

import (
	"embed"
	"fmt"

	"github.com/spotifai/deepagent/internal/util"
)

//go:embed templates/*.md
var templatesFS embed.FS

// Template names resolvable by Render.
const (
	System    = "system"
	Plan      = "plan"
	Research  = "research"
	Execute   = "execute"
	Summarize = "summarize"
	Finalize  = "finalize"
)

// Render loads the named template and substitutes the provided variables.
func Render(name string, vars map[string]any) (string, error) {
	raw, err := templatesFS.ReadFile(fmt.Sprintf("templates/%s.md", name))
	if err != nil {
		return "", fmt.Errorf("unknown prompt template %q: %w", name, err)
	}
	rendered, err := util.RenderTemplate(string(raw), vars)
	if err != nil {
		return "", fmt.Errorf("render prompt template %q: %w", name, err)
	}
	return rendered, nil
}
