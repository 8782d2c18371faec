package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/assetver/internal/config"
	"github.com/vango-dev/assetver/internal/errors"
	"github.com/vango-dev/assetver/internal/log"
	"github.com/vango-dev/assetver/pkg/assets"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	dir        string
	logLevel   string
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "assetver",
		Short: "Cache-busting version parameters for static asset URLs",
		Long: `assetver appends a version query parameter to static asset URLs.

The version is either a fixed string from assetver.yaml or, with
autoVersioning enabled, the modification time of the asset file found
under the public directory or one of the extra search paths.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if _, ok := os.LookupEnv("NO_COLOR"); ok || flags.noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to assetver.yaml")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		urlCmd(flags),
		findCmd(flags),
		serveCmd(flags),
		initCmd(flags),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig resolves configuration for the current invocation.
// Without --config, the nearest assetver.yaml at or above --dir is used.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	dir := flags.dir
	if flags.configPath == "" {
		if root, err := config.FindProjectRoot(dir); err == nil {
			dir = root
		}
	}

	cfg, err := config.Resolve(flags.configPath, dir)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return cfg, nil
}

// newVersioner builds the versioner described by cfg.
func newVersioner(cfg *config.Config, opts ...assets.Option) *assets.Versioner {
	base := []assets.Option{
		assets.WithPathResolver(cfg.PathResolver()),
		assets.WithURLBuilder(assets.NewURLBuilder(cfg.AssetURL)),
		assets.WithLogger(log.WithComponent("assets")),
	}
	return assets.New(cfg.Assets(), append(base, opts...)...)
}

// configureLogging sets up the global logger from cfg.
func configureLogging(cfg *config.Config, out io.Writer) {
	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Output:  out,
		Console: cfg.Log.Console,
	})
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
