package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSystem(t *testing.T) {
	out, err := Render(System, map[string]any{
		"domain": "música en Spotify",
		"tools":  "- search_tracks: busca canciones",
		"tone":   "cercano y directo",
	})
	assert.NoError(t, err)
	assert.Contains(t, out, "música en Spotify")
	assert.Contains(t, out, "search_tracks")
	assert.Contains(t, out, "cercano y directo")
}

func TestRenderSystemWithoutTools(t *testing.T) {
	out, err := Render(System, map[string]any{
		"domain": "música",
		"tone":   "neutro",
	})
	assert.NoError(t, err)
	assert.Contains(t, out, "No hay herramientas registradas")
}

func TestRenderExecuteOptionalNotes(t *testing.T) {
	out, err := Render(Execute, map[string]any{
		"step": "Buscar canciones",
		"goal": "Encontrar 10 canciones de rock",
	})
	assert.NoError(t, err)
	assert.Contains(t, out, "Buscar canciones")
	assert.NotContains(t, out, "Notas:")

	out, err = Render(Execute, map[string]any{
		"step":  "Buscar canciones",
		"goal":  "Encontrar 10 canciones de rock",
		"notes": "Priorizar los años 70",
	})
	assert.NoError(t, err)
	assert.Contains(t, out, "Notas: Priorizar los años 70")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("nope", nil)
	assert.Error(t, err)
}

func TestAllTemplatesRender(t *testing.T) {
	vars := map[string]any{
		"domain": "d", "tools": "t", "tone": "n",
		"step": "s", "goal": "g", "notes": "x",
	}
	for _, name := range []string{System, Plan, Research, Execute, Summarize, Finalize} {
		out, err := Render(name, vars)
		assert.NoError(t, err, name)
		assert.NotEmpty(t, out, name)
	}
}
