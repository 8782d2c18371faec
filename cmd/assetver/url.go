package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/assetver/internal/errors"
	"github.com/vango-dev/assetver/pkg/assets"
)

func urlCmd(flags *globalFlags) *cobra.Command {
	var (
		secure   bool
		insecure bool
	)

	cmd := &cobra.Command{
		Use:   "url <path>...",
		Short: "Print versioned URLs for asset paths",
		Long: `Print the versioned URL for each asset path, one per line.

Examples:
  assetver url css/app.css
  assetver url --secure js/app.js "img/logo.svg?size=2x"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secure && insecure {
				return errors.Newf(errors.CategoryCLI, "--secure and --insecure are mutually exclusive")
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			configureLogging(cfg, cmd.ErrOrStderr())

			override := assets.SecureDefault
			switch {
			case secure:
				override = assets.SecureOn
			case insecure:
				override = assets.SecureOff
			}

			v := newVersioner(cfg)
			for _, p := range args {
				out, err := v.Get(p, override)
				if err != nil {
					return errors.New("A120").Wrap(err).WithDetail(err.Error())
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&secure, "secure", false, "Force https URLs")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "Force http URLs")

	return cmd
}
