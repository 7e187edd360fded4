package output

import (
	"bytes"
	"html/template"

	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

var aliasTemplate = template.Must(template.New("alias").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .URL }}</title>
<link rel="canonical" href="{{ .URL }}">
<meta http-equiv="refresh" content="0; url={{ .URL }}">
</head>
<body><a href="{{ .URL }}">{{ .URL }}</a></body>
</html>
`))

// AliasPage returns a redirect page pointing at target.
func AliasPage(target string) []byte {
	var buf bytes.Buffer
	// The template only fails on a write error, which bytes.Buffer never returns.
	_ = aliasTemplate.Execute(&buf, struct{ URL string }{target})
	return buf.Bytes()
}

// Alias is one redirect page owned by an item.
type Alias struct {
	DestPath string
	Target   string
	Owner    string
}

// Aliases returns the redirect pages declared by item. Each alias is a site
// URL; it becomes a directory index page unless its last segment has a dot.
func Aliases(item *content.Item) []Alias {
	out := make([]Alias, 0, len(item.Aliases))
	for _, a := range item.Aliases {
		if a == "" {
			continue
		}
		out = append(out, Alias{
			DestPath: urlpath.DestPathFromURL(a),
			Target:   item.URL,
			Owner:    item.ID + " (alias " + a + ")",
		})
	}
	return out
}
