package main

import (
	"os"

	"github.com/spf13/cobra"

	"dubserve/internal/service"
)

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Serve the dub workspace over stdio JSON-RPC",
	Long:         "Serve answers dub/* requests (selection, path listing, check builds) on stdin/stdout for editor integrations.",
	SilenceUsage: true,
	RunE:         runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	srv := service.NewServer(os.Stdin, os.Stdout, sess.ws, sess.builder, sess.log)
	return srv.Run(cmd.Context())
}
