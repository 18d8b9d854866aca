package shell

// Pipeline is an ordered list of commands. A single-command pipeline runs
// standalone; with two or more commands each stage's stdout feeds the next
// stage's stdin.
type Pipeline struct {
	Commands []Command
}

// Command is either a built-in invocation or an external program invocation.
type Command interface {
	// Redirection returns the command's redirect clause, or nil.
	Redirection() *Redirect

	isCommand()
}

// BuiltinCommand invokes one of the shell's built-ins.
type BuiltinCommand struct {
	Builtin  Builtin
	Redirect *Redirect
}

// ExternalCommand invokes an external program. Args[0] is the program name.
type ExternalCommand struct {
	Args     []string
	Redirect *Redirect
}

func (c *BuiltinCommand) Redirection() *Redirect  { return c.Redirect }
func (c *ExternalCommand) Redirection() *Redirect { return c.Redirect }

func (*BuiltinCommand) isCommand()  {}
func (*ExternalCommand) isCommand() {}

// Stream names an output stream a redirect applies to.
type Stream int

const (
	// Stdout is file descriptor 1.
	Stdout Stream = iota
	// Stderr is file descriptor 2.
	Stderr
)

// Redirect reroutes a single output stream to a file. Only descriptors 1
// and 2 are representable; the parser rejects anything else.
type Redirect struct {
	Stream   Stream
	Filename string
	Append   bool
}

// Builtin is the payload of a built-in invocation.
type Builtin interface {
	// Name returns the built-in's command name.
	Name() string

	isBuiltin()
}

// Cd changes the working directory.
type Cd struct {
	Path string
}

// Echo writes its arguments to stdout.
type Echo struct {
	Args []string
}

// Exit terminates the shell process.
type Exit struct {
	Code int
}

// Pwd prints the working directory.
type Pwd struct{}

// Type reports whether a name is a built-in or a PATH-resident executable.
type Type struct {
	Target string
}

// History prints the command history. Limit, when non-nil, restricts the
// output to the last *Limit entries.
type History struct {
	Limit *int
}

func (Cd) Name() string      { return "cd" }
func (Echo) Name() string    { return "echo" }
func (Exit) Name() string    { return "exit" }
func (Pwd) Name() string     { return "pwd" }
func (Type) Name() string    { return "type" }
func (History) Name() string { return "history" }

func (Cd) isBuiltin()      {}
func (Echo) isBuiltin()    {}
func (Exit) isBuiltin()    {}
func (Pwd) isBuiltin()     {}
func (Type) isBuiltin()    {}
func (History) isBuiltin() {}

// BuiltinNames lists the names the parser recognizes as built-ins, sorted.
func BuiltinNames() []string {
	return []string{"cd", "echo", "exit", "history", "pwd", "type"}
}

// IsBuiltinName reports whether name is a recognized built-in command name.
// The match is case sensitive.
func IsBuiltinName(name string) bool {
	for _, b := range BuiltinNames() {
		if b == name {
			return true
		}
	}
	return false
}
