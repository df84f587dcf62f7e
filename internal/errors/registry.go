package errors

// Registered error codes.
const (
	CodeDuplicateRouteName = "R001"
	CodeMissingParam       = "R002"
	CodeUnknownRoute       = "R003"
	CodeInvariantViolation = "R004"
	CodeDestroyed          = "R005"
	CodeAmbiguousRootPath  = "R006"
	CodeInvalidRoute       = "R007"
	CodeInvalidPattern     = "R008"
	CodeUnexpectedParam    = "R009"

	CodeConfigNotFound    = "R100"
	CodeConfigInvalid     = "R101"
	CodeConfigUnsupported = "R102"
	CodeConfigRemote      = "R103"
	CodeConfigEnv         = "R104"
	CodeNotLoaded         = "R105"
)

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Route map errors (R001-R099)
	// ============================================

	CodeDuplicateRouteName: {
		Category:   CategoryRouting,
		Message:    "duplicate route name",
		Suggestion: "Route names are global across the whole map; rename one of the routes.",
		DocURL:     "https://routetree.dev/docs/errors/R001",
	},
	CodeMissingParam: {
		Category:   CategoryGenerate,
		Message:    "missing route parameter",
		Suggestion: "Pass a value for every :param in the route's path.",
		DocURL:     "https://routetree.dev/docs/errors/R002",
	},
	CodeUnknownRoute: {
		Category:   CategoryGenerate,
		Message:    "unknown route",
		Suggestion: "List the registered names with `routetree routes`.",
		DocURL:     "https://routetree.dev/docs/errors/R003",
	},
	CodeInvariantViolation: {
		Category: CategoryLifecycle,
		Message:  "Invariant Violation: call .listen() before using .generate()",
		DocURL:   "https://routetree.dev/docs/errors/R004",
	},
	CodeDestroyed: {
		Category:   CategoryLifecycle,
		Message:    "router has been destroyed",
		Suggestion: "Create a new router with router.New().",
		DocURL:     "https://routetree.dev/docs/errors/R005",
	},
	CodeAmbiguousRootPath: {
		Category:   CategoryRouting,
		Message:    "ambiguous root path",
		Suggestion: "Only one top-level route may have an empty path; give the others an explicit path.",
		DocURL:     "https://routetree.dev/docs/errors/R006",
	},
	CodeInvalidRoute: {
		Category: CategoryRouting,
		Message:  "invalid route",
		DocURL:   "https://routetree.dev/docs/errors/R007",
	},
	CodeInvalidPattern: {
		Category:   CategoryPattern,
		Message:    "invalid path pattern",
		Suggestion: "Dynamic segments look like :name and each name may appear once per path.",
		DocURL:     "https://routetree.dev/docs/errors/R008",
	},
	CodeUnexpectedParam: {
		Category: CategoryGenerate,
		Message:  "unexpected route parameter",
		DocURL:   "https://routetree.dev/docs/errors/R009",
	},

	// ============================================
	// Configuration errors (R100-R199)
	// ============================================

	CodeConfigNotFound: {
		Category:   CategoryConfig,
		Message:    "route map not found",
		Suggestion: "Pass --routes or set ROUTETREE_ROUTES.",
		DocURL:     "https://routetree.dev/docs/errors/R100",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "invalid route map",
		DocURL:   "https://routetree.dev/docs/errors/R101",
	},
	CodeConfigUnsupported: {
		Category:   CategoryConfig,
		Message:    "unsupported route map format",
		Suggestion: "Use a .json, .yaml, .yml or .toml file.",
		DocURL:     "https://routetree.dev/docs/errors/R102",
	},
	CodeConfigRemote: {
		Category: CategoryConfig,
		Message:  "cannot fetch remote route map",
		DocURL:   "https://routetree.dev/docs/errors/R103",
	},
	CodeConfigEnv: {
		Category: CategoryConfig,
		Message:  "invalid environment settings",
		DocURL:   "https://routetree.dev/docs/errors/R104",
	},
	CodeNotLoaded: {
		Category:   CategoryConfig,
		Message:    "no route map loaded",
		Suggestion: "Fix the route map; the server retries on the next change.",
		DocURL:     "https://routetree.dev/docs/errors/R105",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
