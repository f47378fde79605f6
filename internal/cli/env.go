package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/avdeev/apilab/internal/storage"
)

// NewEnvCommand creates the env command group.
func NewEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage environments",
		Long:  "Environments hold named variable sets. The selected environment is applied to every send.",
	}

	cmd.AddCommand(
		newEnvCreateCommand(),
		newEnvListCommand(),
		newEnvSetCommand(),
		newEnvUnsetCommand(),
		newEnvUseCommand(),
		newEnvUnuseCommand(),
		newEnvDeleteCommand(),
		newEnvImportCommand(),
	)

	return cmd
}

func newEnvCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.Environments.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created environment %q (%s)\n", e.Name, e.ID)
			return nil
		},
	}
}

func newEnvListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			environments, err := a.Environments.List(ctx)
			if err != nil {
				return err
			}
			selected, err := a.Environments.Selected(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(environments) == 0 {
				fmt.Fprintln(out, "No environments.")
				return nil
			}
			for _, e := range environments {
				marker := " "
				if selected != nil && selected.ID == e.ID {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s  %s  (%d variables)\n", marker, e.ID, e.Name, len(e.Variables))
			}
			return nil
		},
	}
}

func newEnvSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME KEY=VALUE [KEY=VALUE...]",
		Short: "Set environment variables",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			e, err := a.Environments.Get(ctx, args[0])
			if err != nil {
				return err
			}
			for _, pair := range args[1:] {
				key, value, _ := strings.Cut(pair, "=")
				if key == "" {
					return fmt.Errorf("invalid variable %q, expected key=value", pair)
				}
				e.SetVariable(key, value)
			}
			return a.Environments.Update(ctx, e)
		},
	}
}

func newEnvUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset NAME KEY [KEY...]",
		Short: "Remove environment variables",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			e, err := a.Environments.Get(ctx, args[0])
			if err != nil {
				return err
			}
			for _, key := range args[1:] {
				e.DeleteVariable(key)
			}
			return a.Environments.Update(ctx, e)
		},
	}
}

func newEnvUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Select the environment applied to sends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.Environments.Select(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Using environment %q\n", e.Name)
			return nil
		},
	}
}

func newEnvUnuseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unuse",
		Short: "Clear the environment selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Environments.ClearSelection(cmd.Context())
		},
	}
}

func newEnvDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			e, err := a.Environments.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.Environments.Delete(ctx, e.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted environment %q\n", e.Name)
			return nil
		},
	}
}

func newEnvImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import NAME FILE",
		Short: "Import variables from a dotenv file",
		Long:  "Read KEY=VALUE pairs from a dotenv file into the named environment, creating it if needed.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := godotenv.Read(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			e, err := a.Environments.Get(ctx, args[0])
			if errors.Is(err, storage.ErrEnvironmentNotFound) {
				e, err = a.Environments.Create(ctx, args[0])
			}
			if err != nil {
				return err
			}
			for key, value := range vars {
				e.SetVariable(key, value)
			}
			if err := a.Environments.Update(ctx, e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d variables into %q\n", len(vars), e.Name)
			return nil
		},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
