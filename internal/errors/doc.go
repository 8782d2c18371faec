// Package errors provides coded, actionable errors for assetver.
//
// Each code (e.g., "A101") maps to a category and a short message. Callers
// attach detail, a hint and the underlying error:
//
//	return errors.New("A101").
//	    WithDetail("line 3: mapping values are not allowed here").
//	    WithSuggestion("Check that assetver.yaml is valid YAML").
//	    Wrap(err)
//
// The CLI renders them with Format; everything else sees Error().
//
// Codes:
//   - A100-A119: configuration
//   - A120-A139: asset resolution
//   - A140-A159: HTTP server
package errors
