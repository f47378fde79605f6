package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avdeev/apilab/internal/exporter"
	"github.com/avdeev/apilab/internal/storage"
)

// NewCollectionCommand creates the collection command group.
func NewCollectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage request collections",
	}

	cmd.AddCommand(
		newCollectionCreateCommand(),
		newCollectionListCommand(),
		newCollectionShowCommand(),
		newCollectionDeleteCommand(),
		newCollectionRemoveCommand(),
		newCollectionVarCommand(),
		newCollectionExportCommand(),
		newCollectionImportCommand(),
	)

	return cmd
}

func newCollectionCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.Collections.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created collection %q (%s)\n", c.Name, c.ID)
			return nil
		},
	}
}

func newCollectionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			collections, err := a.Collections.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(collections) == 0 {
				fmt.Fprintln(out, "No collections.")
				return nil
			}
			for _, c := range collections {
				fmt.Fprintf(out, "%s  %s  (%d requests)\n", c.ID, c.Name, len(c.Requests))
			}
			return nil
		},
	}
}

func newCollectionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a collection's variables and requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.Collections.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID)
			if c.Description != "" {
				fmt.Fprintln(out, c.Description)
			}
			if len(c.Variables) > 0 {
				fmt.Fprintln(out, "\nVariables:")
				for _, key := range sortedKeys(c.Variables) {
					fmt.Fprintf(out, "  %s = %s\n", key, c.Variables[key])
				}
			}
			fmt.Fprintln(out, "\nRequests:")
			if len(c.Requests) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			for _, r := range c.Requests {
				fmt.Fprintf(out, "  %s  %-6s %s  %s\n", r.ID, r.Method, r.URL, r.Name)
			}
			return nil
		},
	}
}

func newCollectionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			c, err := a.Collections.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.Collections.Delete(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %q\n", c.Name)
			return nil
		},
	}
}

func newCollectionRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME REQUEST_ID",
		Short: "Remove a request from a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Collections.RemoveRequest(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed request %s\n", args[1])
			return nil
		},
	}
}

func newCollectionVarCommand() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "var NAME KEY=VALUE [KEY=VALUE...]",
		Short: "Set or unset collection variables",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			c, err := a.Collections.Get(ctx, args[0])
			if err != nil {
				return err
			}
			for _, pair := range args[1:] {
				key, value, _ := strings.Cut(pair, "=")
				if key == "" {
					return fmt.Errorf("invalid variable %q, expected key=value", pair)
				}
				if unset {
					c.DeleteVariable(key)
				} else {
					c.SetVariable(key, value)
				}
			}
			return a.Collections.Update(ctx, c)
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Remove the named variables instead of setting them")
	return cmd
}

func newCollectionExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Export a collection as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.Collections.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			content, err := exporter.MarshalCollection(c)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(content))
				return nil
			}
			return os.WriteFile(output, content, 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newCollectionImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a collection from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := exporter.UnmarshalCollection(content)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if existing, err := a.Collections.Get(ctx, c.Name); err == nil {
				return fmt.Errorf("collection %q already exists (%s)", existing.Name, existing.ID)
			} else if !errors.Is(err, storage.ErrCollectionNotFound) {
				return err
			}

			created, err := a.Collections.Create(ctx, c.Name)
			if err != nil {
				return err
			}
			created.Description = c.Description
			created.Variables = c.Variables
			created.Requests = c.Requests
			if err := a.Collections.Update(ctx, created); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported collection %q (%d requests)\n", created.Name, len(created.Requests))
			return nil
		},
	}
}
