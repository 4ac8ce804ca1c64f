package constants

// CLIExtensionPrefix is the prefix used in user-facing output to refer to the CLI
const CLIExtensionPrefix = "flowctl"

// ExpressionRoots are the top-level `$name` references the expression
// validator (pkg/validate) recognizes as valid inside a `={{ ... }}`
// expression body (spec §4.C.6).
var ExpressionRoots = []string{
	"$json", "$node", "$workflow", "$vars",
	"$env", "$execution", "$item", "$items",
	"$now", "$today",
}
