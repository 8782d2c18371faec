package assets

import "html/template"

// Resolver provides asset path resolution for templates and components.
type Resolver interface {
	// Asset resolves a source asset path to the URL to render.
	//
	// Example:
	//   resolver.Asset("css/app.css") → "/css/app.css?v=1700000000"
	Asset(source string) string
}

var _ Resolver = (*Versioner)(nil)

// FuncMap exposes the versioner to html/template:
//
//	<link rel="stylesheet" href="{{ asset "css/app.css" }}">
//	<script src="{{ secure_asset "js/app.js" }}"></script>
//
// asset uses the configured scheme choice, secure_asset forces https.
// A path that fails to parse aborts template execution with the error.
func (v *Versioner) FuncMap() template.FuncMap {
	return template.FuncMap{
		"asset": func(path string) (string, error) {
			return v.Get(path, SecureDefault)
		},
		"secure_asset": func(path string) (string, error) {
			return v.Get(path, SecureOn)
		},
	}
}
