// Package main implements the dubserve CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dubserve/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "dubserve",
	Short: "Dub build-configuration daemon and diagnostics extractor",
	Long: `dubserve tracks a dub project's active configuration, arch, build type and
compiler, keeps the derived import paths in sync, and turns check-only
compiler output into structured diagnostics for editors and CI.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("root", ".", "project root directory")
	rootCmd.PersistentFlags().String("dub", "", "dub binary to invoke (overrides dubserve.toml)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to report")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
