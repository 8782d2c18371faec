package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/assetver/internal/errors"
)

func findCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "find <path>",
		Short: "Show which file an asset path resolves to",
		Long: `Show the file an asset path resolves to and the version it would get.

The public directory is searched first, then each configured extra path
in order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			configureLogging(cfg, cmd.ErrOrStderr())

			v := newVersioner(cfg)
			realPath, ok := v.FindRealPath(args[0])
			if !ok {
				return errors.New("A121").
					WithDetail("No readable file for " + args[0]).
					WithSuggestion("Check publicDir and paths in " + cfg.Path())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  File:    %s\n", realPath)
			fmt.Fprintf(out, "  Version: %s\n", v.FileVersion(args[0]))
			return nil
		},
	}
}
