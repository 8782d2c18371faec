package assets

import (
	"net/http"
	"net/url"
	"strings"
)

// URLBuilder turns a (versioned) asset path into the final URL handed to the
// browser. It owns scheme selection and host or CDN prefixing.
type URLBuilder interface {
	URL(path string, secure Secure) string
}

// URLBuilderFunc adapts a plain function to URLBuilder.
type URLBuilderFunc func(path string, secure Secure) string

// URL implements URLBuilder.
func (f URLBuilderFunc) URL(path string, secure Secure) string {
	return f(path, secure)
}

// PassthroughURLBuilder returns paths unchanged. It is the default when no
// builder is configured, which keeps versioned paths root-relative.
func PassthroughURLBuilder() URLBuilder {
	return URLBuilderFunc(func(path string, _ Secure) string {
		return path
	})
}

// rootURLBuilder prefixes paths with a root URL such as
// "https://cdn.example.com/static".
type rootURLBuilder struct {
	scheme string
	host   string
	prefix string
}

// NewURLBuilder creates a URLBuilder rooted at root.
//
// Paths that are already absolute URLs ("https://...", "//host/...") are
// returned unchanged. Everything else becomes root + "/" + path with its
// leading slashes trimmed. SecureOn and SecureOff force the scheme of an
// absolute root to https or http; SecureDefault keeps the root's own scheme.
//
//	b := assets.NewURLBuilder("https://cdn.example.com")
//	b.URL("/css/app.css?v=3", assets.SecureOff) // "http://cdn.example.com/css/app.css?v=3"
//
// An empty root produces root-relative paths ("/css/app.css?v=3").
func NewURLBuilder(root string) URLBuilder {
	b := &rootURLBuilder{}

	root = strings.TrimSpace(root)
	if u, err := url.Parse(root); err == nil && u.Host != "" {
		b.scheme = strings.ToLower(u.Scheme)
		b.host = u.Host
		b.prefix = strings.TrimRight(u.Path, "/")
	} else {
		b.prefix = strings.TrimRight(root, "/")
	}
	return b
}

func (b *rootURLBuilder) URL(p string, secure Secure) string {
	if isAbsoluteURL(p) {
		return p
	}

	var sb strings.Builder
	if b.host != "" {
		scheme := b.scheme
		switch secure {
		case SecureOn:
			scheme = "https"
		case SecureOff:
			scheme = "http"
		}
		if scheme != "" {
			sb.WriteString(scheme)
			sb.WriteString(":")
		}
		sb.WriteString("//")
		sb.WriteString(b.host)
	}
	sb.WriteString(b.prefix)
	sb.WriteString("/")
	sb.WriteString(strings.TrimLeft(p, "/"))
	return sb.String()
}

// RequestURLBuilder creates a URLBuilder rooted at the scheme and host the
// request arrived on. TLS connections and X-Forwarded-Proto: https select
// the https scheme.
func RequestURLBuilder(r *http.Request) URLBuilder {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		if first, _, _ := strings.Cut(proto, ","); strings.EqualFold(strings.TrimSpace(first), "https") {
			scheme = "https"
		}
	}
	return NewURLBuilder(scheme + "://" + r.Host)
}

// isAbsoluteURL reports whether p already carries a scheme or is
// protocol-relative.
func isAbsoluteURL(p string) bool {
	if strings.HasPrefix(p, "//") {
		return true
	}
	u, err := url.Parse(p)
	return err == nil && u.Scheme != "" && u.Host != ""
}
