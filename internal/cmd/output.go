package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
)

// print writes data as JSON when asked to, and through text otherwise
func (a *app) print(cmd *cobra.Command, data interface{}, text func(w io.Writer) error) error {
	if a.output == "json" {
		return printJSON(cmd.OutOrStdout(), data, a.query)
	}
	return text(cmd.OutOrStdout())
}

// printJSON writes data as indented JSON, or the results of query run over it
func printJSON(w io.Writer, data interface{}, query string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if query == "" {
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	// gojq only walks plain maps and slices.
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var plain interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return err
	}

	iter := code.Run(plain)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
