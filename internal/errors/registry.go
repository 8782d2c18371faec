package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Configuration Errors (A100-A119)
	// ============================================

	"A100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	"A101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed as YAML.",
	},
	"A102": {
		Category: CategoryConfig,
		Message:  "Invalid secure option",
		Detail:   "secure must be true, false or left unset.",
	},
	"A103": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
	},
	"A104": {
		Category: CategoryConfig,
		Message:  "Invalid server configuration",
	},

	// ============================================
	// Asset Errors (A120-A139)
	// ============================================

	"A120": {
		Category: CategoryAsset,
		Message:  "Invalid asset path",
		Detail:   "The asset path could not be parsed as a URL.",
	},
	"A121": {
		Category: CategoryAsset,
		Message:  "Asset not found",
		Detail:   "No readable file exists under the public root or any search path.",
	},

	// ============================================
	// Server Errors (A140-A159)
	// ============================================

	"A140": {
		Category: CategoryServer,
		Message:  "Server failed",
	},
	"A141": {
		Category: CategoryServer,
		Message:  "Rate limit exceeded",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
