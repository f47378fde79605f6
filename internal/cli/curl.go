package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avdeev/apilab/internal/app"
	"github.com/avdeev/apilab/internal/core"
	"github.com/avdeev/apilab/internal/exporter"
)

// NewCurlCommand creates the curl export command.
func NewCurlCommand() *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:   "curl REQUEST_ID",
		Short: "Print a saved or executed request as a curl command",
		Long: "Resolve the request's variables against the current environment and print\n" +
			"an equivalent curl command. Collections are searched first, then history.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			r, err := findRequest(ctx, a, args[0])
			if err != nil {
				return err
			}

			session := a.NewSession()
			vars, err := session.Vars(ctx, r)
			if err != nil {
				return err
			}
			assembled, err := core.Assemble(r, vars, a.Config().BaseOrigin)
			if err != nil {
				return err
			}

			command := exporter.CurlCommand(assembled)
			if copyToClipboard {
				if err := exporter.CopyToClipboard(command); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), command)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Also copy the command to the clipboard")
	return cmd
}

// findRequest looks the id up in collections first, then in history.
func findRequest(ctx context.Context, a *app.App, id string) (*core.RequestDescriptor, error) {
	if r, _, err := a.Collections.FindRequest(ctx, id); err == nil {
		return r, nil
	}
	entries, err := a.History.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e.ToDescriptor(), nil
		}
	}
	return nil, fmt.Errorf("no request with id %s", id)
}
