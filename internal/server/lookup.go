package server

import (
	"encoding/json"
	"net/http"

	"github.com/vango-dev/assetver/internal/errors"
	"github.com/vango-dev/assetver/pkg/assets"
)

type lookupResponse struct {
	URL     string `json:"url"`
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
	Source  string `json:"source"`
}

type errorResponse struct {
	Code   string `json:"code"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// handleLookup answers GET /_assets/url?path=<p>[&secure=<bool>] with the
// versioned URL for p.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := q.Get("path")
	if p == "" {
		writeError(w, http.StatusBadRequest, errors.New("A120").WithDetail("missing path parameter"))
		return
	}

	secure, err := assets.ParseSecure(q.Get("secure"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("A102").Wrap(err))
		return
	}

	rp, err := s.versioner.Resolve(p)
	if err != nil {
		s.logger.Debug().Err(err).Str("path", p).Msg("lookup rejected")
		writeError(w, http.StatusBadRequest, errors.New("A120").Wrap(err).WithDetail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, lookupResponse{
		URL:     s.versioner.URLFor(s.builderFor(r), rp.Path, secure),
		Path:    rp.Path,
		Version: rp.Version,
		Source:  string(rp.Source),
	})
}

// builderFor uses the configured asset root when there is one and the
// request's own scheme and host otherwise.
func (s *Server) builderFor(r *http.Request) assets.URLBuilder {
	if s.cfg.AssetURL != "" {
		return nil
	}
	return assets.RequestURLBuilder(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, e *errors.Error) {
	writeJSON(w, status, errorResponse{Code: e.Code, Error: e.Message, Detail: e.Detail})
}
