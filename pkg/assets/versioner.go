package assets

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// VersionParam is the query parameter carrying the asset version.
const VersionParam = "v"

// Config holds the versioning options read at startup.
type Config struct {
	// Version is the fixed version string. Empty means none.
	Version string

	// Secure is the default scheme choice passed to the URLBuilder.
	Secure Secure

	// AutoVersioning derives versions from file modification times.
	AutoVersioning bool

	// Paths are extra search directories, relative to the application base
	// directory unless absolute, probed in order after the public root.
	Paths []string
}

// VersionSource says where a resolved version came from.
type VersionSource string

const (
	SourceNone     VersionSource = "none"
	SourceFixed    VersionSource = "fixed"
	SourceModTime  VersionSource = "mtime"
	SourceExternal VersionSource = "external"
)

// ResolvedPath is the outcome of versioning a single asset path.
type ResolvedPath struct {
	// Original is the path as passed in.
	Original string

	// Query is the query string already present on Original, without "?".
	Query string

	// Version is the value of the appended version parameter, empty when
	// nothing was appended.
	Version string

	// Source says how Version was obtained.
	Source VersionSource

	// Path is the rewritten path.
	Path string
}

// Versioner appends cache-busting version parameters to asset paths.
//
// Reads are safe for concurrent use, as are the setters.
type Versioner struct {
	mu             sync.RWMutex
	version        string
	secure         Secure
	autoVersioning bool
	paths          []string

	builder URLBuilder
	fs      FileSystem
	dirs    PathResolver
	logger  zerolog.Logger
	metrics *Metrics
}

// Option configures a Versioner.
type Option func(*Versioner)

// WithURLBuilder sets the collaborator that builds final URLs.
// Default: PassthroughURLBuilder.
func WithURLBuilder(b URLBuilder) Option {
	return func(v *Versioner) {
		if b != nil {
			v.builder = b
		}
	}
}

// WithFileSystem sets the filesystem probed for modification times.
// Default: OSFileSystem.
func WithFileSystem(fs FileSystem) Option {
	return func(v *Versioner) {
		if fs != nil {
			v.fs = fs
		}
	}
}

// WithPathResolver sets how web paths map to directories.
// Default: DirPaths{Base: ".", Public: "public"}.
func WithPathResolver(r PathResolver) Option {
	return func(v *Versioner) {
		if r != nil {
			v.dirs = r
		}
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(v *Versioner) {
		v.logger = l
	}
}

// WithMetrics records every resolution in m.
func WithMetrics(m *Metrics) Option {
	return func(v *Versioner) {
		v.metrics = m
	}
}

// New creates a Versioner from cfg.
func New(cfg Config, opts ...Option) *Versioner {
	v := &Versioner{
		version:        cfg.Version,
		secure:         cfg.Secure,
		autoVersioning: cfg.AutoVersioning,
		paths:          append([]string(nil), cfg.Paths...),
		builder:        PassthroughURLBuilder(),
		fs:             OSFileSystem{},
		dirs:           DirPaths{},
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Version returns the fixed version string.
func (v *Versioner) Version() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// SetVersion replaces the fixed version string.
func (v *Versioner) SetVersion(version string) {
	v.mu.Lock()
	v.version = version
	v.mu.Unlock()
}

// AutoVersioning reports whether versions come from file modification times.
func (v *Versioner) AutoVersioning() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.autoVersioning
}

// SetAutoVersioning toggles modification-time versioning.
func (v *Versioner) SetAutoVersioning(enabled bool) {
	v.mu.Lock()
	v.autoVersioning = enabled
	v.mu.Unlock()
}

// Secure returns the configured scheme choice.
func (v *Versioner) Secure() Secure {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.secure
}

// SetSecure replaces the configured scheme choice. SecureDefault clears it.
func (v *Versioner) SetSecure(secure Secure) {
	v.mu.Lock()
	v.secure = secure
	v.mu.Unlock()
}

// Paths returns a copy of the extra search paths.
func (v *Versioner) Paths() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.paths...)
}

// Get returns the final URL for path with a version parameter appended.
//
// secure overrides the configured scheme choice for this call only; pass
// SecureDefault to keep it. A missing file is not an error, the path simply
// falls back to the fixed version or to no version. An error is returned
// only when path cannot be parsed as a URL.
func (v *Versioner) Get(path string, secure Secure) (string, error) {
	versioned, err := v.AppendVersion(path)
	if err != nil {
		return "", err
	}
	return v.URLFor(nil, versioned, secure), nil
}

// URLFor hands an already versioned path to b, or to the configured builder
// when b is nil. secure falls back to the configured choice when it is
// SecureDefault.
func (v *Versioner) URLFor(b URLBuilder, versioned string, secure Secure) string {
	if b == nil {
		b = v.builder
	}
	return b.URL(versioned, secure.Or(v.Secure()))
}

// Asset implements Resolver. Unparseable paths are logged and handed to the
// URL builder unchanged.
func (v *Versioner) Asset(source string) string {
	out, err := v.Get(source, SecureDefault)
	if err != nil {
		v.logger.Warn().Err(err).Str("path", source).Msg("asset path not versioned")
		return v.URLFor(nil, source, SecureDefault)
	}
	return out
}

// AppendVersion rewrites path with the version parameter appended.
func (v *Versioner) AppendVersion(path string) (string, error) {
	rp, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	return rp.Path, nil
}

// Resolve versions path and returns every piece of the result.
func (v *Versioner) Resolve(path string) (ResolvedPath, error) {
	v.mu.RLock()
	version, auto := v.version, v.autoVersioning
	v.mu.RUnlock()

	rp := ResolvedPath{Original: path, Path: path, Source: SourceNone}

	if !auto {
		if _, query, ok := strings.Cut(path, "?"); ok {
			rp.Query, _, _ = strings.Cut(query, "#")
		}
		if version != "" {
			rp.Version = version
			rp.Source = SourceFixed
			rp.Path = appendParam(path, version)
		}
		v.record(rp, false, false)
		return rp, nil
	}

	if isExternal(path) {
		u, err := url.Parse(path)
		if err != nil {
			return ResolvedPath{}, fmt.Errorf("assets: parse %q: %w", path, err)
		}
		rp.Query = u.RawQuery
		if version != "" {
			rp.Version = version
			rp.Source = SourceExternal
			rp.Path = withVersion(u, version)
		}
		v.record(rp, false, false)
		return rp, nil
	}

	ref, err := parseLocal(path)
	if err != nil {
		return ResolvedPath{}, err
	}
	rp.Query = ref.query

	var found bool
	rp.Version, rp.Source, found = v.localVersion(ref, version)
	if rp.Version != "" {
		rp.Path = appendParam(ref.rooted, rp.Version)
	}
	v.record(rp, true, found)
	return rp, nil
}

// FileVersion returns the version auto-versioning would use for path: the
// file's modification time in Unix seconds when it can be found, otherwise
// the fixed version, otherwise "". Absolute and protocol-relative URLs are
// never probed, and neither are paths that fail to parse.
func (v *Versioner) FileVersion(path string) string {
	fixed := v.Version()
	if isExternal(path) {
		return fixed
	}
	ref, err := parseLocal(path)
	if err != nil {
		return fixed
	}
	version, _, _ := v.localVersion(ref, fixed)
	return version
}

// FindRealPath returns the first readable file for the web path: the public
// root candidate first, then each extra search path in configured order.
// Query, fragment and percent-encoding are handled as in AppendVersion.
// ok is false when no candidate is readable.
func (v *Versioner) FindRealPath(path string) (realPath string, ok bool) {
	ref, err := parseLocal(path)
	if err != nil {
		return "", false
	}
	realPath, _, ok = v.findRealPath(ref.lookup)
	return realPath, ok
}

// localRef is a site-relative asset path split for versioning.
type localRef struct {
	// rooted is the input with a leading "/", still escaped.
	rooted string
	// query is the raw query, without "?" or fragment.
	query string
	// lookup is the unescaped, rooted path portion probed on disk.
	lookup string
}

// parseLocal splits a local path on its first "?" and "#" without treating
// anything before a ":" as a scheme, so "a:b.css" is the file "/a:b.css".
func parseLocal(path string) (localRef, error) {
	rest, _, _ := strings.Cut(path, "#")
	rawPath, query, _ := strings.Cut(rest, "?")

	lookup, err := url.PathUnescape(rawPath)
	if err != nil {
		return localRef{}, fmt.Errorf("assets: parse %q: %w", path, err)
	}

	ref := localRef{rooted: path, query: query, lookup: lookup}
	if !strings.HasPrefix(path, "/") {
		ref.rooted = "/" + path
	}
	if !strings.HasPrefix(lookup, "/") {
		ref.lookup = "/" + lookup
	}
	return ref, nil
}

// localVersion picks the file's modification time when it can be found and
// the fixed version otherwise.
func (v *Versioner) localVersion(ref localRef, fixed string) (string, VersionSource, bool) {
	if _, modTime, ok := v.findRealPath(ref.lookup); ok {
		return strconv.FormatInt(modTime.Unix(), 10), SourceModTime, true
	}
	if fixed != "" {
		return fixed, SourceFixed, false
	}
	return "", SourceNone, false
}

func (v *Versioner) findRealPath(path string) (string, time.Time, bool) {
	candidate := v.dirs.PublicPath(path)
	if modTime, ok := v.fs.Stat(candidate); ok {
		return candidate, modTime, true
	}

	rel := webToOS(path)
	base := v.dirs.BasePath()
	for _, dir := range v.Paths() {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		candidate = filepath.Join(dir, rel)
		if modTime, ok := v.fs.Stat(candidate); ok {
			return candidate, modTime, true
		}
	}

	v.logger.Debug().Str("path", path).Msg("asset not found in any search path")
	return "", time.Time{}, false
}

func (v *Versioner) record(rp ResolvedPath, probed, found bool) {
	v.logger.Debug().
		Str("path", rp.Original).
		Str("version", rp.Version).
		Str("source", string(rp.Source)).
		Msg("asset version resolved")
	if v.metrics != nil {
		v.metrics.observe(rp.Source, probed, found)
	}
}

// isExternal reports whether path points off-site: protocol-relative or
// starting with "http" in any case.
func isExternal(path string) bool {
	if strings.HasPrefix(path, "//") {
		return true
	}
	return len(path) >= 4 && strings.EqualFold(path[:4], "http")
}

// appendParam adds v=<version> to a raw path without parsing it, choosing
// "&" when a query is already present.
func appendParam(path, version string) string {
	path, fragment, hasFragment := strings.Cut(path, "#")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
		if strings.HasSuffix(path, "?") || strings.HasSuffix(path, "&") {
			sep = ""
		}
	}

	out := path + sep + VersionParam + "=" + version
	if hasFragment {
		out += "#" + fragment
	}
	return out
}

// withVersion returns u with v=<version> appended to its query. Scheme, host
// and fragment are kept.
func withVersion(u *url.URL, version string) string {
	out := *u
	param := VersionParam + "=" + version
	if out.RawQuery == "" {
		out.RawQuery = param
	} else {
		out.RawQuery = out.RawQuery + "&" + param
	}
	out.ForceQuery = false
	return out.String()
}
