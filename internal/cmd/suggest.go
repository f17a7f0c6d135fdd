package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/naqd/naqd/internal/assistant"
)

func (a *app) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <word>...",
		Short: "Ask the writing assistant for titles and talking points",
		Long: `Ask the writing assistant for article titles built around a few seed
words. The request goes through the server, which holds the provider key.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words := assistant.FilterWords(args)
			if len(words) == 0 {
				return fmt.Errorf("%s", assistant.MsgNoWords)
			}

			var res assistant.Response
			if err := a.rpc.Call(cmd.Context(), "assistant.suggest", map[string][]string{"words": words}, &res); err != nil {
				return err
			}

			return a.print(cmd, res, func(w io.Writer) error {
				if len(res.Titles) == 0 {
					fmt.Fprintln(w, assistant.MsgNoResponse)
					return nil
				}
				for i, s := range res.Titles {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "%d. %s\n", i+1, s.Title)
					for _, point := range s.Points {
						fmt.Fprintf(w, "   - %s\n", point)
					}
				}
				return nil
			})
		},
	}
}
