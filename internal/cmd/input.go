package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// stdin returns one buffered reader shared by every prompt of the command,
// so piped input is consumed line by line and nothing is lost to buffering.
func (a *app) stdin(cmd *cobra.Command) *bufio.Reader {
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	return a.in
}

// promptSecret prompts for a secret input (no echo)
func (a *app) promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)

	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		password, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(password)), nil
	}

	// Fall back to regular input for non-terminal (e.g., piped input)
	input, err := a.stdin(cmd).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readContent returns value, or the contents of a file when value is
// @path, or the rest of stdin when value is "-"
func (a *app) readContent(cmd *cobra.Command, value string) (string, error) {
	switch {
	case value == "-":
		data, err := io.ReadAll(a.stdin(cmd))
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case strings.HasPrefix(value, "@"):
		data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return "", fmt.Errorf("reading content file: %w", err)
		}
		return string(data), nil
	default:
		return value, nil
	}
}
