package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
	out         io.Writer
}

// NewRootCommand creates the root command writing to stdout
func NewRootCommand() *Command {
	return NewRootCommandWithOutput(os.Stdout)
}

// NewRootCommandWithOutput creates the root command writing results to out
func NewRootCommandWithOutput(out io.Writer) *Command {
	root := &Command{
		Name:        "launchgate",
		Description: "launchgate - Telegram Mini App token exchange tooling",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("launchgate", flag.ContinueOnError),
		out:         out,
	}

	// Add subcommands
	root.Subcommands["sign"] = newSignCommand(out)
	root.Subcommands["verify"] = newVerifyCommand(out)
	root.Subcommands["token"] = newTokenCommand(out)
	root.Subcommands["exchange"] = newExchangeCommand(out)

	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute() error {
	return c.ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the command with explicit arguments
func (c *Command) ExecuteArgs(args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	// Check for help flag
	switch strings.ToLower(args[0]) {
	case "-h", "--help", "help":
		return c.usage()
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	out := c.out
	if out == nil {
		out = os.Stdout
	}

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

// newFlagSet creates a subcommand flag set that reports errors instead of exiting
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// fieldsFlag collects repeated key=value flags
type fieldsFlag map[string]string

func (f fieldsFlag) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (f fieldsFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	f[key] = val
	return nil
}

// orEnv returns value, or the environment variable key when value is empty.
// Secrets are never used as flag defaults so usage output cannot print them.
func orEnv(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}
