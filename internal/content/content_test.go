package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/errors"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/storage"
)

func TestDefaultScenario(t *testing.T) {
	g, err := Default()
	require.NoError(t, err)

	assert.Equal(t, DefaultScenarioID, g.ID)
	assert.Equal(t, "initial", g.InitialRoute)
	assert.Equal(t, []string{"initial", "call_police", "internal_protocol"}, g.RouteIDs())

	initial, ok := g.Route("initial")
	require.True(t, ok)
	require.Len(t, initial.Steps, 15)

	last := initial.Steps[initial.Last()]
	require.True(t, last.IsTransition())
	transition := last.Content.(models.TransitionContent)
	ids := []string{}
	for _, opt := range transition.Options {
		ids = append(ids, opt.ID)
	}
	assert.Equal(t, []string{"call_police", "internal_protocol"}, ids)

	for _, id := range []string{"call_police", "internal_protocol"} {
		r, ok := g.Route(id)
		require.True(t, ok, id)
		assert.Len(t, r.Steps, 3)
		assert.False(t, r.Steps[r.Last()].IsTransition())
	}

	same, err := Default()
	require.NoError(t, err)
	assert.Same(t, g, same)
}

func TestParseRejectsBrokenGraph(t *testing.T) {
	_, err := Parse([]byte(`
id: broken
initialRoute: start
routes:
  - id: start
    steps:
      - type: transition
        content:
          options: [{ id: nowhere, option: go }]
`))
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
	assert.ErrorIs(t, err, models.ErrInvalidGraph)
}

func TestParseRejectsUnknownTopLevelKeys(t *testing.T) {
	_, err := Parse([]byte("id: x\ninitial: a\nroutes: []\n"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
}

func TestParseRejectsMisspelledStepKeys(t *testing.T) {
	_, err := Parse([]byte(`
id: typo
initialRoute: start
routes:
  - id: start
    steps:
      - type: email
        tittle: Aviso
        content: { from: me, subjet: hi }
`))
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "tittle")
}

const extraScenario = `
id: fire-drill
title: Fire drill
initialRoute: only
routes:
  - id: only
    steps:
      - type: alert
        content: { title: FUEGO }
`

func TestLibraryLoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fire.yaml"), []byte(extraScenario), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	store, err := storage.NewScenarioStore(dir)
	require.NoError(t, err)
	lib, err := NewLibrary(store)
	require.NoError(t, err)

	list := lib.List()
	require.Len(t, list, 2)
	assert.Equal(t, DefaultScenarioID, list[0].ID)
	assert.Equal(t, "fire-drill", list[1].ID)
	assert.Equal(t, []string{"only"}, list[1].Routes)

	g, err := lib.Get("fire-drill")
	require.NoError(t, err)
	assert.Equal(t, "Fire drill", g.Title)

	def, err := lib.Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultScenarioID, def.ID)

	_, err = lib.Get("flood")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Equal(t, "SCENARIO_NOT_FOUND", apperrors.CodeOf(err))
}

func TestLibraryReloadKeepsPreviousSetOnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fire.yaml"), []byte(extraScenario), 0644))
	store, err := storage.NewScenarioStore(dir)
	require.NoError(t, err)
	lib, err := NewLibrary(store)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte("id: bad\nroutes: [}"), 0644))
	err = lib.Reload()
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))

	_, err = lib.Get("fire-drill")
	assert.NoError(t, err)
}

func TestLibraryWithoutStore(t *testing.T) {
	lib, err := NewLibrary(nil)
	require.NoError(t, err)
	assert.Len(t, lib.List(), 1)
}
