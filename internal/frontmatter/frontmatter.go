// Package frontmatter splits source documents into a YAML metadata block and
// a body, and parses or writes that block.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Style captures the newline shape of a document so it can be written back.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Document is a parsed source document. Raw holds the unparsed front matter
// block.
type Document struct {
	Meta  map[string]any
	Raw   []byte
	Body  []byte
	Had   bool
	Style Style
}

var bom = []byte("\xef\xbb\xbf")

// Split separates YAML front matter (`---` delimited) from the body.
//
// A UTF-8 byte order mark and blank lines before the opening delimiter are
// ignored. The closing delimiter may be the last line of the file. If the
// document does not open with a delimiter, had is false and body is the input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	trimmed := bytes.TrimPrefix(content, bom)
	for bytes.HasPrefix(trimmed, []byte(nl)) {
		trimmed = trimmed[len(nl):]
	}

	open := []byte("---" + nl)
	if !bytes.HasPrefix(trimmed, open) {
		return nil, content, false, style, nil
	}
	rest := trimmed[len(open):]

	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, style, nil
	}
	if bytes.HasSuffix(rest, []byte(nl+"---")) {
		return rest[:len(rest)-len("---")], []byte{}, true, style, nil
	}
	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// Join reassembles a document from raw front matter and body. If had is false
// the body is returned as-is.
func Join(frontmatter []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	delim := []byte("---" + nl)

	out := make([]byte, 0, 2*len(delim)+len(frontmatter)+len(body))
	out = append(out, delim...)
	out = append(out, frontmatter...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits content and parses its front matter. Meta is never nil.
func Parse(content []byte) (Document, error) {
	fm, body, had, style, err := Split(content)
	if err != nil {
		return Document{}, err
	}
	meta, err := ParseYAML(fm)
	if err != nil {
		return Document{}, err
	}
	return Document{Meta: meta, Raw: fm, Body: body, Had: had, Style: style}, nil
}

// ErrMissingClosingDelimiter indicates the document opened a front matter
// block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

func detectStyle(content []byte) Style {
	newline := "\n"
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		newline = "\r\n"
	}
	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
