package autop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		in   string
		br   bool
		want string
	}{
		{"empty", "  \n", true, ""},
		{"two paragraphs", "one\n\ntwo", true, "<p>one</p>\n<p>two</p>\n"},
		{"line breaks", "a\nb", true, "<p>a<br />\nb</p>\n"},
		{"no line breaks", "a\nb", false, "<p>a\nb</p>\n"},
		{"block kept", "<div>x</div>\n\ntext", true, "<div>x</div>\n<p>text</p>\n"},
		{"crlf", "a\r\n\r\nb", true, "<p>a</p>\n<p>b</p>\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.in, tt.br))
		})
	}
}

func TestCleanup(t *testing.T) {
	assert.Equal(t, "<div>x</div>", Cleanup("<p><div>x</div></p>"))
	assert.Equal(t, "a", Cleanup("<p> </p>\na"))
	assert.Equal(t, "<p>keep</p>", Cleanup("<p>keep</p>"))
}

func TestAttachHandlesOnlyConfiguredExtensions(t *testing.T) {
	hooks := &plugin.Hooks{}
	pctx := plugin.NewContext(context.Background(), nil, config.Snapshot{}, "b")
	require.NoError(t, New().Attach(hooks, pctx))

	out, ok := hooks.OnGetContent(&content.Item{Ext: "txt"}, "hello")
	assert.True(t, ok)
	assert.Equal(t, "<p>hello</p>\n", out)

	_, ok = hooks.OnGetContent(&content.Item{Ext: "md"}, "hello")
	assert.False(t, ok)

	html, err := plugin.RunRender(hooks.AfterRenderHTML, &content.Item{Ext: "html"}, "<p></p><p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", html)
}
