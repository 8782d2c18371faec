package assets

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testModTime = 1700000000

func writeAsset(t *testing.T, dir, name string, modTime int64) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("/* asset */"), 0o644))
	ts := time.Unix(modTime, 0)
	require.NoError(t, os.Chtimes(path, ts, ts))
	return path
}

// countingFS records every probe so tests can assert the filesystem was or
// was not touched.
type countingFS struct {
	mu    sync.Mutex
	calls []string
	inner FileSystem
}

func (c *countingFS) Stat(name string) (time.Time, bool) {
	c.mu.Lock()
	c.calls = append(c.calls, name)
	c.mu.Unlock()
	if c.inner == nil {
		return time.Time{}, false
	}
	return c.inner.Stat(name)
}

func newAutoVersioner(t *testing.T, cfg Config) (*Versioner, string) {
	t.Helper()
	base := t.TempDir()
	cfg.AutoVersioning = true
	v := New(cfg, WithPathResolver(DirPaths{Base: base, Public: "public"}))
	return v, base
}

func TestAppendVersion_FixedVersion(t *testing.T) {
	probe := &countingFS{}
	v := New(Config{Version: "5"}, WithFileSystem(probe))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain path", "css/app.css", "css/app.css?v=5"},
		{"rooted path", "/js/app.js", "/js/app.js?v=5"},
		{"absolute url", "https://cdn.example.com/app.css", "https://cdn.example.com/app.css?v=5"},
		{"existing query uses ampersand", "css/app.css?theme=dark", "css/app.css?theme=dark&v=5"},
		{"trailing question mark", "css/app.css?", "css/app.css?v=5"},
		{"fragment kept last", "img/icons.svg#home", "img/icons.svg?v=5#home"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.AppendVersion(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Empty(t, probe.calls, "filesystem must not be probed without auto-versioning")
}

func TestAppendVersion_NoVersion(t *testing.T) {
	probe := &countingFS{}
	v := New(Config{}, WithFileSystem(probe))

	for _, p := range []string{"css/app.css", "/js/app.js?x=1", "//cdn.example.com/a.js"} {
		got, err := v.AppendVersion(p)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	assert.Empty(t, probe.calls)
}

func TestAppendVersion_ModTimeFromPublicRoot(t *testing.T) {
	v, base := newAutoVersioner(t, Config{})
	writeAsset(t, filepath.Join(base, "public"), "css/app.css", testModTime)

	got, err := v.AppendVersion("css/app.css")
	require.NoError(t, err)
	assert.Equal(t, "/css/app.css?v=1700000000", got)

	got, err = v.AppendVersion("/css/app.css")
	require.NoError(t, err)
	assert.Equal(t, "/css/app.css?v=1700000000", got)
}

func TestAppendVersion_ModTimeKeepsQuery(t *testing.T) {
	v, base := newAutoVersioner(t, Config{Version: "5"})
	writeAsset(t, filepath.Join(base, "public"), "css/app.css", testModTime)

	got, err := v.AppendVersion("/css/app.css?theme=dark&lang=en")
	require.NoError(t, err)
	assert.Equal(t, "/css/app.css?theme=dark&lang=en&v=1700000000", got)

	got, err = v.AppendVersion("/css/app.css?theme=dark#top")
	require.NoError(t, err)
	assert.Equal(t, "/css/app.css?theme=dark&v=1700000000#top", got)
}

func TestAppendVersion_ExternalURLNeverProbed(t *testing.T) {
	probe := &countingFS{inner: OSFileSystem{}}
	v := New(Config{Version: "5", AutoVersioning: true}, WithFileSystem(probe))

	tests := []struct {
		path string
		want string
	}{
		{"http://cdn.example.com/app.css", "http://cdn.example.com/app.css?v=5"},
		{"HTTPS://cdn.example.com/app.css?a=1", "https://cdn.example.com/app.css?a=1&v=5"},
		{"//cdn.example.com/app.js", "//cdn.example.com/app.js?v=5"},
	}
	for _, tt := range tests {
		got, err := v.AppendVersion(tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	assert.Empty(t, probe.calls)

	v.SetVersion("")
	got, err := v.AppendVersion("http://cdn.example.com/app.css")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example.com/app.css", got)
}

func TestAppendVersion_MissingFileFallsBack(t *testing.T) {
	v, _ := newAutoVersioner(t, Config{Version: "5"})

	got, err := v.AppendVersion("css/missing.css")
	require.NoError(t, err)
	assert.Equal(t, "/css/missing.css?v=5", got)

	v.SetVersion("")
	got, err = v.AppendVersion("css/missing.css")
	require.NoError(t, err)
	assert.Equal(t, "css/missing.css", got, "unresolved paths are returned untouched")
}

func TestAppendVersion_EncodedFilename(t *testing.T) {
	v, base := newAutoVersioner(t, Config{})
	want := writeAsset(t, filepath.Join(base, "public"), "css/my file.css", testModTime)

	got, err := v.AppendVersion("css/my%20file.css")
	require.NoError(t, err)
	assert.Equal(t, "/css/my%20file.css?v=1700000000", got)

	assert.Equal(t, "1700000000", v.FileVersion("css/my%20file.css"))

	realPath, ok := v.FindRealPath("/css/my%20file.css?x=1")
	require.True(t, ok)
	assert.Equal(t, want, realPath)
}

func TestAppendVersion_ColonInFirstSegment(t *testing.T) {
	v, base := newAutoVersioner(t, Config{})
	public := filepath.Join(base, "public")
	writeAsset(t, public, "x.css", testModTime)

	got, err := v.AppendVersion("a:b.css")
	require.NoError(t, err)
	assert.Equal(t, "a:b.css", got, "the public directory itself must not version the path")

	writeAsset(t, public, "a:b.css", testModTime+5)
	got, err = v.AppendVersion("a:b.css?x=1")
	require.NoError(t, err)
	assert.Equal(t, "/a:b.css?x=1&v="+strconv.Itoa(testModTime+5), got)
	assert.Equal(t, strconv.Itoa(testModTime+5), v.FileVersion("a:b.css"))
}

func TestAppendVersion_DirectoryIsNotAnAsset(t *testing.T) {
	v, base := newAutoVersioner(t, Config{Version: "5"})
	require.NoError(t, os.MkdirAll(filepath.Join(base, "public", "css"), 0o755))

	for path, want := range map[string]string{
		"/":    "/?v=5",
		"css":  "/css?v=5",
		"css/": "/css/?v=5",
	} {
		got, err := v.AppendVersion(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}

	_, ok := v.FindRealPath("/css")
	assert.False(t, ok)
}

func TestAppendVersion_ParseError(t *testing.T) {
	v := New(Config{AutoVersioning: true})

	_, err := v.AppendVersion("/css/app.css%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assets: parse")
}

func TestFindRealPath_PublicRootWins(t *testing.T) {
	v, base := newAutoVersioner(t, Config{Paths: []string{"resources", "vendor/assets"}})
	public := writeAsset(t, filepath.Join(base, "public"), "js/app.js", testModTime)
	writeAsset(t, filepath.Join(base, "resources"), "js/app.js", testModTime+10)

	got, ok := v.FindRealPath("/js/app.js")
	require.True(t, ok)
	assert.Equal(t, public, got)
}

func TestFindRealPath_SearchPathsInOrder(t *testing.T) {
	v, base := newAutoVersioner(t, Config{Paths: []string{"resources", "vendor/assets"}})
	writeAsset(t, filepath.Join(base, "vendor", "assets"), "js/app.js", testModTime+20)
	want := writeAsset(t, filepath.Join(base, "resources"), "js/app.js", testModTime+10)

	got, ok := v.FindRealPath("/js/app.js")
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, os.Remove(want))
	got, ok = v.FindRealPath("/js/app.js")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(base, "vendor", "assets", "js", "app.js"), got)

	ver, err := v.AppendVersion("js/app.js")
	require.NoError(t, err)
	assert.Equal(t, "/js/app.js?v="+strconv.Itoa(testModTime+20), ver)
}

func TestFindRealPath_AbsoluteSearchPath(t *testing.T) {
	v, _ := newAutoVersioner(t, Config{})
	shared := t.TempDir()
	want := writeAsset(t, shared, "fonts/inter.woff2", testModTime)

	v2 := New(Config{AutoVersioning: true, Paths: []string{shared}}, WithPathResolver(v.dirs))
	got, ok := v2.FindRealPath("fonts/inter.woff2")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFindRealPath_NotFound(t *testing.T) {
	v, _ := newAutoVersioner(t, Config{Paths: []string{"resources"}})

	got, ok := v.FindRealPath("/nope.css")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestFindRealPath_ProbeOrder(t *testing.T) {
	probe := &countingFS{}
	v := New(Config{AutoVersioning: true, Paths: []string{"a", "b"}},
		WithFileSystem(probe),
		WithPathResolver(DirPaths{Base: "/srv/app", Public: "public"}),
	)

	_, ok := v.FindRealPath("/x/y.css")
	assert.False(t, ok)
	assert.Equal(t, []string{
		filepath.FromSlash("/srv/app/public/x/y.css"),
		filepath.FromSlash("/srv/app/a/x/y.css"),
		filepath.FromSlash("/srv/app/b/x/y.css"),
	}, probe.calls)
}

func TestFindRealPath_TraversalStaysInRoot(t *testing.T) {
	probe := &countingFS{}
	v := New(Config{AutoVersioning: true},
		WithFileSystem(probe),
		WithPathResolver(DirPaths{Base: "/srv/app", Public: "public"}),
	)

	v.FindRealPath("/../../etc/passwd")
	require.Len(t, probe.calls, 1)
	assert.Equal(t, filepath.FromSlash("/srv/app/public/etc/passwd"), probe.calls[0])
}

func TestFileVersion(t *testing.T) {
	v, base := newAutoVersioner(t, Config{Version: "7"})
	writeAsset(t, filepath.Join(base, "public"), "css/app.css", testModTime)

	assert.Equal(t, "1700000000", v.FileVersion("css/app.css?x=1"))
	assert.Equal(t, "7", v.FileVersion("css/other.css"))
	assert.Equal(t, "7", v.FileVersion("//cdn.example.com/css/app.css"))

	v.SetVersion("")
	assert.Equal(t, "", v.FileVersion("css/other.css"))
}

func TestResolve(t *testing.T) {
	v, base := newAutoVersioner(t, Config{Version: "5"})
	writeAsset(t, filepath.Join(base, "public"), "css/app.css", testModTime)

	rp, err := v.Resolve("css/app.css?theme=dark")
	require.NoError(t, err)
	assert.Equal(t, ResolvedPath{
		Original: "css/app.css?theme=dark",
		Query:    "theme=dark",
		Version:  "1700000000",
		Source:   SourceModTime,
		Path:     "/css/app.css?theme=dark&v=1700000000",
	}, rp)

	rp, err = v.Resolve("http://cdn.example.com/app.css")
	require.NoError(t, err)
	assert.Equal(t, SourceExternal, rp.Source)

	rp, err = v.Resolve("missing.css")
	require.NoError(t, err)
	assert.Equal(t, SourceFixed, rp.Source)
}

func TestGet_SecureResolution(t *testing.T) {
	type call struct {
		path   string
		secure Secure
	}
	var got []call
	builder := URLBuilderFunc(func(p string, s Secure) string {
		got = append(got, call{p, s})
		return "built:" + p
	})

	v := New(Config{Version: "5"}, WithURLBuilder(builder))

	out, err := v.Get("app.css", SecureDefault)
	require.NoError(t, err)
	assert.Equal(t, "built:app.css?v=5", out)

	v.SetSecure(SecureOff)
	_, err = v.Get("app.css", SecureDefault)
	require.NoError(t, err)
	_, err = v.Get("app.css", SecureOn)
	require.NoError(t, err)

	assert.Equal(t, []call{
		{"app.css?v=5", SecureDefault},
		{"app.css?v=5", SecureOff},
		{"app.css?v=5", SecureOn},
	}, got)
}

func TestGet_Idempotent(t *testing.T) {
	v, base := newAutoVersioner(t, Config{Version: "5"})
	writeAsset(t, filepath.Join(base, "public"), "css/app.css", testModTime)

	first, err := v.Get("css/app.css?x=1", SecureDefault)
	require.NoError(t, err)
	second, err := v.Get("css/app.css?x=1", SecureDefault)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGet_ParseErrorPropagates(t *testing.T) {
	v := New(Config{AutoVersioning: true})
	out, err := v.Get("%zz", SecureDefault)
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestAsset_FallsBackOnParseError(t *testing.T) {
	v := New(Config{AutoVersioning: true})
	assert.Equal(t, "%zz", v.Asset("%zz"))
}

func TestAccessors(t *testing.T) {
	paths := []string{"a"}
	v := New(Config{Version: "1", Secure: SecureOn, Paths: paths})
	paths[0] = "mutated"

	assert.Equal(t, "1", v.Version())
	assert.Equal(t, SecureOn, v.Secure())
	assert.False(t, v.AutoVersioning())
	assert.Equal(t, []string{"a"}, v.Paths())

	v.SetVersion("2")
	v.SetSecure(SecureDefault)
	v.SetAutoVersioning(true)
	assert.Equal(t, "2", v.Version())
	assert.Equal(t, SecureDefault, v.Secure())
	assert.True(t, v.AutoVersioning())
}

func TestConcurrentReads(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	v, base := newAutoVersioner(t, Config{Version: "5"})
	writeAsset(t, filepath.Join(base, "public"), "css/app.css", testModTime)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				out, err := v.Get("css/app.css", SecureDefault)
				assert.NoError(t, err)
				assert.Equal(t, "/css/app.css?v=1700000000", out)
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentSetters(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	v := New(Config{Version: "1"})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			v.SetVersion(strconv.Itoa(n))
		}(i)
		go func() {
			defer wg.Done()
			out, err := v.Get("app.js", SecureDefault)
			assert.NoError(t, err)
			assert.Contains(t, out, "app.js?v=")
		}()
	}
	wg.Wait()
}
