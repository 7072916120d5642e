package cli

// Command names the subcommand selected on the command line.
type Command string

const (
	CommandMerge    Command = "merge"
	CommandCheck    Command = "check"
	CommandResolve  Command = "resolve"
	CommandMove     Command = "move"
	CommandStatus   Command = "status"
	CommandSnapshot Command = "snapshot"
)

// Options is the fully-parsed configuration for a single invocation.
//
// Pointer fields are nil unless the flag was given, so they only override
// the config file when set.
type Options struct {
	Command Command

	ConfigPath string
	Verbose    bool

	// merge
	OtherPath      string
	CurrentPath    string
	OutputPath     string
	Operation      string
	CharOperation  string
	PreferOtherEOL *bool
	DiffOnly       bool
	Markers        bool
	Backup         *bool
	TUI            bool

	// check, resolve
	Path string
	Take string

	// move
	OldPattern string
	NewPattern string
	Dir        string
	DryRun     bool
	Force      *bool
	Yes        bool

	// status, snapshot
	Previous string
	Current  string
	Output   string

	// Usage is the help text of the command that asked for it. Only set
	// together with ErrHelp.
	Usage string
}
