package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dubserve/internal/buildctl"
	"dubserve/internal/dub"
	"dubserve/internal/workspace"
)

// session bundles the collaborators every subcommand needs: the loaded
// workspace, a build requester bound to it, and the shared logger.
type session struct {
	ws      *workspace.Workspace
	builder *buildctl.Requester
	log     *log.Logger
}

// openSession loads the project named by --root and wires the dub tool,
// workspace and build requester together, honouring dubserve.toml and the
// persistent flags.
func openSession(cmd *cobra.Command) (*session, error) {
	root, err := cmd.Root().PersistentFlags().GetString("root")
	if err != nil {
		return nil, err
	}
	if root, err = filepath.Abs(root); err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, err
	}
	dubBin, err := cmd.Root().PersistentFlags().GetString("dub")
	if err != nil {
		return nil, err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, err
	}

	logger := log.New(os.Stderr, "dubserve: ", log.LstdFlags)
	if quiet {
		logger = log.New(io.Discard, "", 0)
	}

	cfg, _, err := workspace.LoadToolConfig(root)
	if err != nil {
		return nil, err
	}
	if dubBin == "" {
		dubBin = cfg.Dub
	}
	tool, err := dub.NewTool(dubBin, logger)
	if err != nil {
		return nil, err
	}

	var cache *workspace.PathCache
	if cfg.Cache {
		cache, err = workspace.OpenPathCache("dubserve")
		if err != nil {
			logger.Printf("path cache disabled: %v", err)
			cache = nil
		}
	}

	ws, err := workspace.New(cmd.Context(), root, tool, tool, workspace.Options{
		Compiler: cfg.Compiler,
		Cache:    cache,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &session{
		ws:      ws,
		builder: buildctl.New(ws, tool, maxDiagnostics, logger),
		log:     logger,
	}, nil
}

// applySelectors commits the one-shot selector flags shared by check and
// paths. Invalid selections surface as errors instead of the daemon's
// boolean returns, since a CLI run has nothing to fall back to.
func (s *session) applySelectors(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if name, _ := cmd.Flags().GetString("config"); name != "" {
		if !contains(s.ws.Configurations(), name) {
			return fmt.Errorf("unknown configuration %q", name)
		}
		if !s.ws.SetConfiguration(ctx, name) {
			s.log.Printf("no paths derived for configuration %q", name)
		}
	}
	if name, _ := cmd.Flags().GetString("arch"); name != "" {
		if !contains(s.ws.ArchTypes(), name) {
			return fmt.Errorf("unknown arch type %q", name)
		}
		s.ws.SetArchType(ctx, name)
	}
	if name, _ := cmd.Flags().GetString("build-type"); name != "" {
		if !contains(s.ws.BuildTypes(), name) {
			return fmt.Errorf("unknown build type %q", name)
		}
		s.ws.SetBuildType(ctx, name)
	}
	if name, _ := cmd.Flags().GetString("compiler"); name != "" {
		if !s.ws.SetCompiler(ctx, name) {
			return fmt.Errorf("cannot resolve compiler %q", name)
		}
	}
	return nil
}

func contains(list []string, name string) bool {
	for _, entry := range list {
		if entry == name {
			return true
		}
	}
	return false
}

func addSelectorFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "configuration to select before running")
	cmd.Flags().String("arch", "", "arch type to select before running")
	cmd.Flags().String("build-type", "", "build type to select before running")
	cmd.Flags().String("compiler", "", "compiler to select before running")
}
