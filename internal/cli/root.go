package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/initclean/internal/config"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "initclean",
	Short: "Regenerate __all__ export lists in Python package files",
	Long: `initclean rewrites Python package entry-point files (__init__.py) so that
their __all__ list names exactly the symbols bound by their top-level imports.

Any "if __name__ == '__main__':" block and any previous __all__ block are
removed, and a freshly sorted __all__ is appended.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.initclean.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// loadConfig reads the explicit --config file when given, otherwise
// .initclean.yaml from the working directory. Environment variables
// override either source.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.NewFileLoader(cfgFile).Load()
	}
	return config.LoadConfig()
}
