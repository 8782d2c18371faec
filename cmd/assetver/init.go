package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/assetver/internal/config"
	"github.com/vango-dev/assetver/internal/errors"
)

func initCmd(flags *globalFlags) *cobra.Command {
	var (
		force bool
		auto  bool
		ver   string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.ConfigFileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				path = filepath.Join(flags.dir, config.ConfigFileName)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.CategoryCLI, "%s already exists", path).
					WithSuggestion("Pass --force to overwrite it")
			}

			cfg := config.New()
			cfg.Version = ver
			cfg.AutoVersioning = auto
			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&auto, "auto", false, "Enable modification-time versioning")
	cmd.Flags().StringVar(&ver, "version", "", "Fixed asset version")

	return cmd
}
