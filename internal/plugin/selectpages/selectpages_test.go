package selectpages

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

func collection(n int) *content.Collection {
	items := make([]*content.Item, n)
	for i := range items {
		items[i] = &content.Item{ID: string(rune('a' + i))}
	}
	return content.NewCollection(config.Snapshot{}, items)
}

func attach(t *testing.T, mode config.Mode, options map[string]any) *plugin.Hooks {
	t.Helper()
	hooks := &plugin.Hooks{}
	pctx := plugin.NewContext(context.Background(), nil, config.Snapshot{Mode: mode}, "b").ForPlugin(Name, options)
	require.NoError(t, New().Validate(options))
	require.NoError(t, New().Attach(hooks, pctx))
	return hooks
}

func TestSelectsSliceInServeMode(t *testing.T) {
	hooks := attach(t, config.ModeServe, map[string]any{"start": 1, "end": 5, "step": 2})
	c := collection(6)
	require.NoError(t, plugin.RunCollection(hooks.AfterInitializeSingles, c))
	require.Len(t, c.Items, 2)
	assert.Equal(t, "b", c.Items[0].ID)
	assert.Equal(t, "d", c.Items[1].ID)
}

func TestInactiveOutsideServeMode(t *testing.T) {
	hooks := attach(t, config.ModeBuild, map[string]any{"end": 1})
	assert.Empty(t, hooks.AfterInitializeSingles)
}

func TestInactiveWithoutOptions(t *testing.T) {
	hooks := attach(t, config.ModeServe, map[string]any{})
	assert.Empty(t, hooks.AfterInitializeSingles)
}

func TestValidateRejectsNonNumbers(t *testing.T) {
	assert.Error(t, New().Validate(map[string]any{"start": "x"}))
	assert.Error(t, New().Validate(map[string]any{"step": -1}))
}
