package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/rexwzh/termcap/internal/config"
)

// newConfigCmd groups the configuration CLI surface: showing the resolved
// config, listing resolvable templates, resetting to defaults, and
// installing/removing custom templates.
func newConfigCmd(mgr *config.Manager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage termcap's configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(mgr),
		newConfigListTemplatesCmd(mgr),
		newConfigResetCmd(mgr),
		newConfigInstallTemplateCmd(mgr),
		newConfigRemoveTemplateCmd(mgr),
	)

	return cmd
}

func newConfigShowCmd(mgr *config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := mgr.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}
}

func newConfigListTemplatesCmd(mgr *config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "list-templates",
		Short: "List every template resolvable by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := mgr.AvailableTemplates()
			if err != nil {
				return fmt.Errorf("list templates: %w", err)
			}
			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates available.")
				return nil
			}
			for _, t := range templates {
				kind := "builtin"
				if t.Custom {
					kind = "custom"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Name, kind)
			}
			return nil
		},
	}
}

func newConfigResetCmd(mgr *config.Manager) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the configuration file to built-in defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("pass --yes to confirm resetting the configuration to defaults")
			}
			if err := mgr.Reset(); err != nil {
				return fmt.Errorf("reset config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset without an interactive prompt")
	return cmd
}

func newConfigInstallTemplateCmd(mgr *config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "install-template <name> <svg_file>",
		Short: "Install a custom SVG template under the given name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mgr.InstallTemplate(args[0], args[1]); err != nil {
				return fmt.Errorf("install template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %q installed.\n", args[0])
			return nil
		},
	}
}

func newConfigRemoveTemplateCmd(mgr *config.Manager) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-template <name>",
		Short: "Remove a previously installed custom template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mgr.RemoveTemplate(args[0]); err != nil {
				return fmt.Errorf("remove template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %q removed.\n", args[0])
			return nil
		},
	}
}
