// Package service exposes one workspace to editor integrations over stdio
// JSON-RPC.
//
// Selector mutation and list projection are handled synchronously on the
// read loop; build requests run in the background and answer out of band,
// so a long compilation never stalls the request stream. Responses are
// matched to requests by ID, as JSON-RPC intends.
package service

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"sync"

	"dubserve/internal/buildctl"
	"dubserve/internal/diagfmt"
	"dubserve/internal/workspace"
)

var errShutdown = errors.New("service shutdown")

// Server handles the dub/* request surface for one workspace.
type Server struct {
	in      *bufio.Reader
	out     *bufio.Writer
	sendMu  sync.Mutex
	pending sync.WaitGroup

	ws      *workspace.Workspace
	builder *buildctl.Requester
	log     *log.Logger
}

// NewServer wires a server to its transport and collaborators.
func NewServer(in io.Reader, out io.Writer, ws *workspace.Workspace, builder *buildctl.Requester, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stderr, "service: ", log.LstdFlags)
	}
	return &Server{
		in:      bufio.NewReader(in),
		out:     bufio.NewWriter(out),
		ws:      ws,
		builder: builder,
		log:     logger,
	}
}

// Run serves requests until the client disconnects or asks for shutdown.
// In-flight build replies are drained before returning.
func (s *Server) Run(ctx context.Context) error {
	defer s.pending.Wait()
	for {
		payload, err := readFrame(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Printf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handle(ctx, &msg); err != nil {
			if errors.Is(err, errShutdown) {
				return nil
			}
			return err
		}
	}
}

func (s *Server) handle(ctx context.Context, msg *rpcMessage) error {
	switch msg.Method {
	case "shutdown":
		if err := s.sendResponse(msg.ID, nil); err != nil {
			return err
		}
		return errShutdown

	case "dub/update":
		return s.handleUpdate(ctx, msg)
	case "dub/build":
		return s.handleBuild(ctx, msg)

	case "dub/getConfiguration":
		return s.sendResponse(msg.ID, s.ws.Configuration())
	case "dub/getArchType":
		return s.sendResponse(msg.ID, s.ws.ArchType())
	case "dub/getBuildType":
		return s.sendResponse(msg.ID, s.ws.BuildType())
	case "dub/getCompiler":
		return s.sendResponse(msg.ID, s.ws.Compiler())

	case "dub/setConfiguration":
		return s.handleSet(ctx, msg, s.ws.SetConfiguration)
	case "dub/setArchType":
		return s.handleSet(ctx, msg, s.ws.SetArchType)
	case "dub/setBuildType":
		return s.handleSet(ctx, msg, s.ws.SetBuildType)
	case "dub/setCompiler":
		return s.handleSet(ctx, msg, s.ws.SetCompiler)

	case "dub/listImports":
		return s.handlePathList(msg, s.ws.ImportPaths)
	case "dub/listStringImports":
		return s.handlePathList(msg, s.ws.StringImportPaths)
	case "dub/listFileImports":
		return s.handlePathList(msg, s.ws.SourceFiles)
	case "dub/listConfigurations":
		return s.sendResponse(msg.ID, s.ws.Configurations())
	case "dub/listBuildTypes":
		return s.sendResponse(msg.ID, s.ws.BuildTypes())
	case "dub/listArchTypes":
		return s.sendResponse(msg.ID, s.ws.ArchTypes())

	case "dub/dependencies":
		return s.handleDependencies(msg)

	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleUpdate(ctx context.Context, msg *rpcMessage) error {
	nonEmpty, err := s.ws.Reload(ctx)
	if err != nil {
		return s.sendError(msg.ID, codeUpdateFailed, err.Error())
	}
	return s.sendResponse(msg.ID, nonEmpty)
}

func (s *Server) handleBuild(ctx context.Context, msg *rpcMessage) error {
	ch, err := s.builder.Request(ctx)
	if err != nil {
		code := codeBuildFailed
		if errors.Is(err, workspace.ErrInvalidConfiguration) {
			code = codeInvalidConfiguration
		}
		return s.sendError(msg.ID, code, err.Error())
	}
	id := append(json.RawMessage(nil), msg.ID...)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		res := <-ch
		if res.Err != nil {
			if err := s.sendError(id, codeBuildFailed, res.Err.Error()); err != nil {
				s.log.Printf("delivering build failure: %v", err)
			}
			return
		}
		if err := s.sendResponse(id, diagfmt.IssuesJSON(res.Issues)); err != nil {
			s.log.Printf("delivering build result: %v", err)
		}
	}()
	return nil
}

func (s *Server) handleSet(ctx context.Context, msg *rpcMessage, set func(context.Context, string) bool) error {
	var params setParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	return s.sendResponse(msg.ID, set(ctx, params.Value))
}

// handlePathList serves one derived path list. The lists are only
// meaningful for a declared configuration, so the validity check runs
// before every read; a reload can have invalidated the selection since
// the lists were computed.
func (s *Server) handlePathList(msg *rpcMessage, list func() []string) error {
	if err := s.ws.ValidateConfiguration(); err != nil {
		return s.sendError(msg.ID, codeInvalidConfiguration, err.Error())
	}
	return s.sendResponse(msg.ID, list())
}

func (s *Server) handleDependencies(msg *rpcMessage) error {
	var params dependenciesParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	deps, err := s.ws.Dependencies(params.Recursive)
	if err != nil {
		return s.sendError(msg.ID, codeInvalidConfiguration, err.Error())
	}
	out := make([]dependencyJSON, len(deps))
	for i, dep := range deps {
		out[i] = dependencyJSON{Name: dep.Name, Version: dep.Version}
	}
	return s.sendResponse(msg.ID, out)
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.send(rpcMessage{JSONRPC: "2.0", ID: id, Result: raw})
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	return s.send(rpcMessage{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) send(msg rpcMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeFrame(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
