package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:          "deps",
	Short:        "Print the project's dependencies and pinned versions",
	SilenceUsage: true,
	RunE:         runDeps,
}

func init() {
	depsCmd.Flags().Bool("recursive", false, "include transitive dependencies")
}

func runDeps(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	recursive, err := cmd.Flags().GetBool("recursive")
	if err != nil {
		return err
	}
	deps, err := sess.ws.Dependencies(recursive)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, dep := range deps {
		fmt.Fprintf(out, "%s %s\n", dep.Name, dep.Version)
	}
	return nil
}
