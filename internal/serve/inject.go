package serve

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
)

const scriptTag = `<script src="` + LiveReloadPath + `.js"></script>`

// maxInjectSize bounds the buffered response; larger bodies pass through.
const maxInjectSize = 512 * 1024

// injectLiveReload adds the live reload script to HTML pages before </body>.
func injectLiveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Path
		if p != "" && !strings.HasSuffix(p, "/") && !strings.HasSuffix(p, ".html") {
			next.ServeHTTP(w, r)
			return
		}
		buf := &bufferedResponse{header: http.Header{}, status: http.StatusOK}
		next.ServeHTTP(buf, r)
		buf.flushTo(w)
	})
}

type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) { b.status = code }

func (b *bufferedResponse) Write(p []byte) (int, error) { return b.body.Write(p) }

func (b *bufferedResponse) flushTo(w http.ResponseWriter) {
	for k, v := range b.header {
		w.Header()[k] = v
	}
	body := b.body.Bytes()
	ct := b.header.Get("Content-Type")
	if b.status == http.StatusOK && strings.Contains(ct, "text/html") && len(body) <= maxInjectSize {
		body = insertScript(body)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	}
	w.WriteHeader(b.status)
	_, _ = w.Write(body)
}

func insertScript(body []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(body), []byte("</body>"))
	if idx < 0 {
		return append(body, scriptTag...)
	}
	out := make([]byte, 0, len(body)+len(scriptTag))
	out = append(out, body[:idx]...)
	out = append(out, scriptTag...)
	return append(out, body[idx:]...)
}
