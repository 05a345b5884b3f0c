package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (S100-S199)
	"S101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The configuration file passed to storagehub does not exist.",
	},
	"S102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed. JSON and YAML are supported, chosen by file extension.",
	},
	"S103": {
		Category: CategoryConfig,
		Message:  "Invalid environment configuration",
		Detail:   "A STORAGESYNC_* environment variable could not be parsed.",
	},
	"S104": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
	},

	// Storage (S200-S299)
	"S201": {
		Category: CategoryStorage,
		Message:  "Storage unavailable",
		Detail:   "The storage backend could not be reached.",
	},

	// Protocol (S300-S399)
	"S301": {
		Category: CategoryProtocol,
		Message:  "Hub connection failed",
		Detail:   "Could not open a WebSocket connection to the hub.",
	},
	"S302": {
		Category: CategoryProtocol,
		Message:  "Hub connection lost",
		Detail:   "The hub closed the connection or the network failed.",
	},

	// CLI (S400-S499)
	"S401": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"S402": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command could not complete. The cause below has the details.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
