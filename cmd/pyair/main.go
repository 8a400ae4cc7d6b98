// Command pyair pivots air quality CSV exports and draws wind roses,
// histograms, regression plots and pollutant time series from them.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Version information (set at build time).
var version = "dev"

const usage = `usage: pyair <command> [flags]

commands:
%s
Run "pyair <command> -h" for the flags of a command.
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pyair:", err)
		os.Exit(1)
	}
}

// run dispatches args to a command. Results meant for the user go to
// stdout, status messages to the logger.
func run(args []string, stdout io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprintf(stdout, usage, commandList())
		return nil
	}
	if args[0] == "version" || args[0] == "-version" {
		fmt.Fprintf(stdout, "pyair version %s\n", version)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	return cmd.run(args[1:], stdout)
}

func commandList() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "  %-11s %s\n", name, commands[name].summary)
	}
	return b.String()
}
