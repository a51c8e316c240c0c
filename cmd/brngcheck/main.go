// Command brngcheck verifies fixtures against live generator runs, lists
// the supported algorithms and inspects fixture archives.
package main

import (
	"fmt"
	"io"
	"os"
)

const (
	exitOK       = 0
	exitError    = 1
	exitUsage    = 2
	exitMismatch = 3
)

// errMismatch marks a completed check that did not pass.
type errMismatch struct{ msg string }

func (e errMismatch) Error() string { return e.msg }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "verify":
		err = verifyCmd(rest, stdout, stderr)
	case "list":
		err = listCmd(rest, stdout, stderr)
	case "archive":
		err = archiveCmd(rest, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "brngcheck: unknown command %q\n\n", cmd)
		printUsage(stderr)
		return exitUsage
	}

	switch err.(type) {
	case nil:
		return exitOK
	case usageError:
		fmt.Fprintf(stderr, "brngcheck %s: %v\n", cmd, err)
		return exitUsage
	case errMismatch:
		fmt.Fprintf(stderr, "brngcheck %s: %v\n", cmd, err)
		return exitMismatch
	default:
		fmt.Fprintf(stderr, "brngcheck %s: %v\n", cmd, err)
		return exitError
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  brngcheck verify --prefix PATH [--from-state]")
	fmt.Fprintln(w, "  brngcheck verify --state FILE --vals FILE --algorithm NAME [--variant OPT]")
	fmt.Fprintln(w, "  brngcheck list")
	fmt.Fprintln(w, "  brngcheck archive --db FILE.db [--id UUID [--verify] [--export PREFIX] [--delete]]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit status is 0 on success, 1 on errors, 2 on usage errors and 3 when a")
	fmt.Fprintln(w, "check completes without passing.")
}
