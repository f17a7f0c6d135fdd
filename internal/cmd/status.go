package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/naqd/naqd/internal/gate"
)

type statusView struct {
	ClientID  string        `json:"client_id"`
	StatePath string        `json:"state_path"`
	Posts     int           `json:"posts"`
	Comments  int           `json:"comments"`
	Local     []gate.Status `json:"local"`
	Server    []gate.Status `json:"server,omitempty"`
	ServerErr string        `json:"server_error,omitempty"`
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show password gates and content created from this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snap := a.state.Snapshot()
			view := statusView{
				ClientID:  snap.ClientID,
				StatePath: a.state.Path(),
				Posts:     len(snap.Content.Posts),
				Comments:  len(snap.Content.Comments),
			}

			for _, action := range []gate.Action{gate.ActionAuth, gate.ActionDelete} {
				st, err := a.gate(action).Status(ctx)
				if err != nil {
					return err
				}
				view.Local = append(view.Local, st)

				var remote gate.Status
				if view.ServerErr == "" {
					if err := a.rpc.Call(ctx, "gate.status", map[string]string{"action": string(action)}, &remote); err != nil {
						view.ServerErr = err.Error()
						view.Server = nil
						continue
					}
					view.Server = append(view.Server, remote)
				}
			}

			return a.print(cmd, view, func(w io.Writer) error {
				fmt.Fprintf(w, "client:   %s\n", view.ClientID)
				fmt.Fprintf(w, "state:    %s\n", view.StatePath)
				fmt.Fprintf(w, "created:  %d posts, %d comments\n\n", view.Posts, view.Comments)
				printGates(w, "local", view.Local)
				if view.ServerErr != "" {
					fmt.Fprintf(w, "server:   unreachable (%s)\n", view.ServerErr)
					return nil
				}
				printGates(w, "server", view.Server)
				return nil
			})
		},
	}
}

func printGates(w io.Writer, where string, gates []gate.Status) {
	for _, st := range gates {
		state := fmt.Sprintf("%d attempts left", st.Remaining)
		switch {
		case st.Disabled:
			state = "disabled"
		case st.Authenticated:
			state = "authenticated"
		}
		fmt.Fprintf(w, "%-9s %-7s %s\n", where+":", st.Action, state)
	}
}
