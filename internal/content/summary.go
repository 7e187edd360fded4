package content

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// SummaryLength is the maximum summary length in runes.
const SummaryLength = 110

var templateTags = regexp.MustCompile(`(?s)\{\{[^}]*?\}\}|\{#[^}]*?#\}|\{%[^}]*?%\}`)

var summaryReplacer = strings.NewReplacer(
	"/", " ",
	`\`, " ",
	`"`, " ",
	"'", " ",
	"\r\n", "",
	"\n", "",
)

// Summarize strips markup from rendered content and truncates the text.
// Script and style bodies are dropped along with template tags.
func Summarize(src string) string {
	text := templateTags.ReplaceAllString(htmlText(src), "")
	text = summaryReplacer.Replace(text)
	if r := []rune(text); len(r) > SummaryLength {
		text = string(r[:SummaryLength])
	}
	return text
}

func htmlText(src string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(src))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}
