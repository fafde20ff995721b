package assets

import (
	"net/http"
	"strings"

	zlog "github.com/rs/zerolog/log"
)

// Handler serves library files under prefix. Range requests are supported.
func (l *Library) Handler(prefix string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		name := strings.TrimPrefix(r.URL.Path, prefix)
		if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}

		f, entry, err := l.Open(name)
		if err != nil {
			zlog.Debug().Msgf("assets: serve %s: %v", name, err)
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", entry.ContentType)
		http.ServeContent(w, r, entry.Name, entry.ModTime, f)
	})
}
