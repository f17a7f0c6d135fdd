// Package cmd implements the naqd command-line client.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naqd/naqd/internal/localstate"
	"github.com/naqd/naqd/internal/rpcclient"
	"github.com/naqd/naqd/pkg/config"
	"github.com/naqd/naqd/pkg/logging"
)

const defaultServer = "http://localhost:8080"

// app holds the global flags and the clients built from them
type app struct {
	server    string
	output    string
	query     string
	statePath string
	depth     int
	debug     bool

	state *localstate.File
	in    *bufio.Reader
	rpc   *rpcclient.Client
}

// NewRootCmd builds the naqd command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "naqd",
		Short: "Command-line client for the naqd critique forum",
		Long: `naqd reads and writes posts and comments on a naqd server.

State kept on this device (client id, your posts and comments, password
lockouts) lives in ~/.config/naqd/state.yaml unless --state says otherwise.

Environment Variables:
  NAQD_SERVER   Server URL (default ` + defaultServer + `)`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.server, "server", "", "Server URL (env: NAQD_SERVER)")
	flags.StringVarP(&a.output, "output", "o", "text", "Output format (text|json)")
	flags.StringVar(&a.query, "query", "", "jq expression to filter JSON output")
	flags.StringVar(&a.statePath, "state", "", "State file path")
	flags.IntVar(&a.depth, "depth", 8, "Deepest reply level to indent in threads")
	flags.BoolVar(&a.debug, "debug", false, "Log debug output to stderr")

	root.AddCommand(
		a.postsCmd(),
		a.showCmd(),
		a.latestCmd(),
		a.postCmd(),
		a.commentCmd(),
		a.deleteCmd(),
		a.suggestCmd(),
		a.statusCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	level := "error"
	if a.debug {
		level = "debug"
	}
	if err := logging.InitLogger(&config.LoggingConfig{Level: level, Format: "text", Output: "stderr"}); err != nil {
		return err
	}

	switch a.output {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported output format %q (use text or json)", a.output)
	}
	if a.query != "" {
		a.output = "json"
	}

	if a.statePath == "" {
		path, err := localstate.DefaultPath()
		if err != nil {
			return err
		}
		a.statePath = path
	}
	state, err := localstate.Open(a.statePath)
	if err != nil {
		return err
	}
	a.state = state

	server := a.server
	if server == "" {
		server = os.Getenv("NAQD_SERVER")
	}
	if server == "" {
		server = defaultServer
	}
	rpc, err := rpcclient.New(strings.TrimRight(server, "/")+"/", state.ClientID())
	if err != nil {
		return err
	}
	a.rpc = rpc
	return nil
}
