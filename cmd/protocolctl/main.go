// Command protocolctl validates sync protocol messages, exports their JSON
// Schemas and talks to the relay.
package main

import (
	"fmt"
	"io"
	"os"
)

// Exit codes.
const (
	exitOK             = 0
	exitInvalid        = 1
	exitUsage          = 2
	exitUnknownVariant = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "validate":
		return runValidate(rest, stdin, stdout, stderr)
	case "schema":
		return runSchema(rest, stdin, stdout, stderr)
	case "publish":
		return runPublish(rest, stdin, stdout, stderr)
	case "tail":
		return runTail(rest, stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
		return exitOK
	}
	fmt.Fprintf(stderr, "protocolctl: unknown command %q\n", cmd)
	usage(stderr)
	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: protocolctl <command> [flags]

commands:
  validate        validate a message (update, event or container) from a file or stdin
  schema export   write JSON Schema documents for the message unions
  schema check    validate a message with both the native validator and its JSON Schema
  publish         validate and publish a message to the relay
  tail            print messages arriving on the relay
`)
}

// readInput reads the file named by the first positional arg, or stdin for "-" or none.
func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}
