package urlpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLFromDestPath(t *testing.T) {
	cases := map[string]string{
		"index.html":              "/",
		"post/index.html":         "/post/",
		"post/2024/03/index.html": "/post/2024/03/",
		"sitemap.xml":             "/sitemap.xml",
		"docs/feed.xml":           "/docs/feed.xml",
		"about":                   "/about/",
		"A of C/index.html":       "/a%20of%20c/",
		"Café/index.html":         "/caf%c3%a9/",
	}
	for in, want := range cases {
		assert.Equal(t, want, URLFromDestPath(in), in)
	}
}

func TestDestPathFromURL(t *testing.T) {
	cases := map[string]string{
		"/":              "index.html",
		"":               "index.html",
		"/post/":         "post/index.html",
		"/post/2024/03/": "post/2024/03/index.html",
		"/sitemap.xml":   "sitemap.xml",
		"/a%20of%20c/":   "a of c/index.html",
		"/caf%c3%a9/":    "café/index.html",
		"about":          "about/index.html",
	}
	for in, want := range cases {
		assert.Equal(t, want, DestPathFromURL(in), in)
	}
}

func TestRoundTripIndexDestPaths(t *testing.T) {
	paths := []string{
		"index.html",
		"post/index.html",
		"post/2024/03/path/2/index.html",
		"tag/golang/index.html",
		"a of c/index.html",
		"café/index.html",
	}
	for _, p := range paths {
		assert.Equal(t, p, DestPathFromURL(URLFromDestPath(p)), p)
	}
}

func TestCleanName(t *testing.T) {
	cases := map[string]string{
		"sample":                   "sample",
		"_10_sample":               "sample",
		"_sample":                  "_sample",
		"_sample_":                 "_sample_",
		"_sample_sample_":          "sample_",
		"sample_sample":            "sample_sample",
		"_sample1_sample2_sample3": "sample2_sample3",
		"__sample":                 "_sample",
		"___sample":                "__sample",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanName(in), in)
	}
}

func TestToSlug(t *testing.T) {
	assert.Equal(t, "sample", ToSlug("sample"))
	assert.Equal(t, "a-b-c", ToSlug("a b c"))
	assert.Equal(t, "sample", ToSlug("Sample"))
	assert.Equal(t, "a-of-c", ToSlug("A of C"))
	assert.Equal(t, "c++_notes", ToSlug("C++_Notes"))
}

func TestAbsURL(t *testing.T) {
	assert.Equal(t, "https://example.com/post/", AbsURL("https://example.com", "/post/"))
	assert.Equal(t, "https://example.com/blog/post/", AbsURL("https://example.com/blog/", "/post/"))
	assert.Equal(t, "/post/", AbsURL("", "/post/"))
}

func TestNormalizePath(t *testing.T) {
	decomposed := "café/index.md"
	assert.Equal(t, "café/index.md", NormalizePath(decomposed))
}
