package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var pathsCmd = &cobra.Command{
	Use:          "paths [imports|string-imports|files|all]",
	Short:        "Print the derived paths for the active settings",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runPaths,
}

func init() {
	addSelectorFlags(pathsCmd)
}

func runPaths(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	if err := sess.applySelectors(cmd); err != nil {
		return err
	}
	if err := sess.ws.ValidateConfiguration(); err != nil {
		return err
	}

	kind := "all"
	if len(args) == 1 {
		kind = args[0]
	}
	out := cmd.OutOrStdout()
	switch kind {
	case "imports":
		printLines(out, sess.ws.ImportPaths())
	case "string-imports":
		printLines(out, sess.ws.StringImportPaths())
	case "files":
		printLines(out, sess.ws.SourceFiles())
	case "all":
		fmt.Fprintln(out, "# import paths")
		printLines(out, sess.ws.ImportPaths())
		fmt.Fprintln(out, "# string import paths")
		printLines(out, sess.ws.StringImportPaths())
		fmt.Fprintln(out, "# source files")
		printLines(out, sess.ws.SourceFiles())
	default:
		return fmt.Errorf("unknown path kind %q (expected imports|string-imports|files|all)", kind)
	}
	return nil
}

func printLines(out io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
}
