package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dubserve/internal/diag"
	"dubserve/internal/diagfmt"
)

// errCheckFailed signals a non-zero exit after the diagnostics have
// already been printed.
var errCheckFailed = errors.New("check failed")

var checkCmd = &cobra.Command{
	Use:          "check",
	Short:        "Run a check-only build and print its diagnostics",
	SilenceUsage: true,
	RunE:         runCheck,
}

func init() {
	addSelectorFlags(checkCmd)
	checkCmd.Flags().Bool("json", false, "emit issues as JSON")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	if err := sess.applySelectors(cmd); err != nil {
		return err
	}

	ch, err := sess.builder.Request(cmd.Context())
	if err != nil {
		return err
	}
	res := <-ch
	if res.Err != nil {
		return res.Err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if asJSON {
		if err := diagfmt.JSON(cmd.OutOrStdout(), res.Issues); err != nil {
			return err
		}
		return checkExitStatus(cmd, res.Issues)
	}

	colorValue, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	mode, err := readColorMode(colorValue)
	if err != nil {
		return err
	}
	styled := applyColorMode(mode)

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	diagfmt.Pretty(cmd.OutOrStdout(), res.Issues, diagfmt.PrettyOpts{
		Color: styled,
		Max:   maxDiagnostics,
	})
	fmt.Fprintln(cmd.OutOrStdout(), diagfmt.Summary(res.Issues, styled))

	return checkExitStatus(cmd, res.Issues)
}

// checkExitStatus turns error-severity issues into a non-zero exit. The
// diagnostics are already on screen, so the error itself stays silent.
func checkExitStatus(cmd *cobra.Command, issues []diag.BuildIssue) error {
	for _, issue := range issues {
		if issue.Severity == diag.SevError {
			cmd.SilenceErrors = true
			return errCheckFailed
		}
	}
	return nil
}
