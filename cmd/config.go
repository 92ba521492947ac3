package cmd

import (
	"fmt"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(loader *appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the wallet configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(loader))
	return cmd
}

func newConfigInitCmd(loader *appLoader) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := loader.configPath
			if path == "" {
				defaultPath, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}

			if _, err := config.WriteDefault(path, force); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
