package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration csvx would use: the built-in defaults merged
with the config file. The output is valid YAML and can be saved as a
starting point, e.g. csvx config > ~/.config/csvx/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.printConfig(cmd)
		},
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the merged configuration as commented YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.printConfig(cmd)
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file that would be read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := resolveConfigPath(o.configFile)
			if p == "" {
				p = "(none: built-in defaults)"
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), p)
			return err
		},
	}

	themes := &cobra.Command{
		Use:   "themes",
		Short: "List the available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadMergedConfig(o.configFile)
			if err != nil {
				return usageError(err)
			}
			w := cmd.OutOrStdout()
			for _, name := range cfg.ThemeNames() {
				marker := "  "
				if name == cfg.UI.Theme {
					marker = "* "
				}
				if _, err := fmt.Fprintln(w, marker+name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.AddCommand(get, path, themes)
	return cmd
}

func (o *rootOptions) printConfig(cmd *cobra.Command) error {
	cfg, path, err := loadMergedConfig(o.configFile)
	if err != nil {
		return usageError(err)
	}
	out, err := renderConfigYAML(cfg)
	if err != nil {
		return runtimeError(err)
	}
	w := cmd.OutOrStdout()
	if path != "" {
		fmt.Fprintf(w, "# merged with %s\n", path)
	}
	_, err = fmt.Fprint(w, out)
	return err
}
