package cmd

// CommandArgs contains parsed command arguments
type CommandArgs struct {
	// Positional arguments (command-specific)
	Args []string

	// Parsed flags
	Flags map[string]any

	// Raw unparsed arguments (for custom parsing)
	Raw []string
}

// Arg returns the positional argument at index i, or fallback if missing.
func (ca *CommandArgs) Arg(i int, fallback string) string {
	if i < len(ca.Args) {
		return ca.Args[i]
	}
	return fallback
}

func (ca *CommandArgs) String(name string) string {
	value, _ := ca.Flags[name].(string)
	return value
}

func (ca *CommandArgs) Int(name string) int {
	value, _ := ca.Flags[name].(int64)
	return int(value)
}

func (ca *CommandArgs) Bool(name string) bool {
	value, _ := ca.Flags[name].(bool)
	return value
}

// CommandFlagSet defines the expected flags for a command
type CommandFlagSet struct {
	Flags map[string]*CommandFlag
}

// CommandFlag represents a single command-line flag
type CommandFlag struct {
	Name        string `json:"name"`              // e.g., "offset"
	Short       string `json:"short"`             // Single-char shorthand (e.g., "o")
	Type        string `json:"type"`              // "string", "bool", "int"
	Default     any    `json:"default,omitempty"` // Default value
	Required    bool   `json:"required"`          // Must be provided
	Description string `json:"description"`       // Help text
}
