// Package config loads assetver.yaml.
//
// # Configuration File Structure
//
//	version: "5"
//	secure: true
//	autoVersioning: true
//	paths:
//	  - resources/assets
//	baseDir: .
//	publicDir: public
//	assetURL: https://cdn.example.com
//	server:
//	  addr: ":8080"
//	  prefix: /
//	log:
//	  level: info
//
// Leaving secure out is different from secure: false. Unset lets the URL
// builder choose the scheme.
//
// # Precedence
//
// Environment (ASSETVER_VERSION, ASSETVER_SECURE, ASSETVER_AUTO_VERSIONING,
// ASSETVER_PATHS, ASSETVER_ASSET_URL, ASSETVER_ADDR, LOG_LEVEL) over the file
// over defaults.
//
//	cfg, err := config.Resolve("", ".")
//	if err != nil {
//	    return err
//	}
//	v := assets.New(cfg.Assets(), assets.WithPathResolver(cfg.PathResolver()))
package config
