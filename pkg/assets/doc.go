// Package assets appends cache-busting version parameters to static asset
// URLs.
//
// A Versioner either appends a fixed version string to every path or, with
// auto-versioning enabled, uses the modification time of the file the path
// points to:
//
//	v := assets.New(assets.Config{
//	    Version:        "5",
//	    AutoVersioning: true,
//	    Paths:          []string{"resources/assets"},
//	}, assets.WithPathResolver(assets.DirPaths{Base: ".", Public: "public"}))
//
//	v.AppendVersion("css/app.css")          // "/css/app.css?v=1700000000"
//	v.AppendVersion("css/app.css?theme=1")  // "/css/app.css?theme=1&v=1700000000"
//	v.AppendVersion("https://cdn.x/app.js") // "https://cdn.x/app.js?v=5"
//
// Files are looked up under the public web root first, then under each extra
// search path in order. Absolute and protocol-relative URLs are never probed
// and receive the fixed version. When nothing is found the fixed version is
// used, and when there is none the path is returned unchanged.
//
// Final URLs are produced by a URLBuilder, which owns scheme and host
// selection:
//
//	v := assets.New(cfg, assets.WithURLBuilder(assets.NewURLBuilder("https://cdn.example.com")))
//	url, err := v.Get("css/app.css", assets.SecureDefault)
//
// Versions are recomputed on every call; nothing is cached.
package assets
