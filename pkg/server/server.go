package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/sylla/internal/logger"
	"github.com/bastiangx/sylla/internal/utils"
	"github.com/bastiangx/sylla/pkg/candidate"
	"github.com/bastiangx/sylla/pkg/config"
	"github.com/bastiangx/sylla/pkg/engine"
	"github.com/bastiangx/sylla/pkg/messenger"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for phrase candidates
type Server struct {
	engine       *engine.Engine
	config       *config.Config
	messenger    *messenger.Messenger
	decoder      *msgpack.Decoder
	encoder      *msgpack.Encoder
	last         candidate.List
	requestCount int
	log          *log.Logger
}

// NewServer creates a server using stdin/stdout for IPC.
// Commits and queries are published on m when it is not nil; without a
// messenger commits are learned by the engine directly.
func NewServer(e *engine.Engine, cfg *config.Config, m *messenger.Messenger) *Server {
	return NewServerWithIO(e, cfg, m, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over r and w.
func NewServerWithIO(e *engine.Engine, cfg *config.Config, m *messenger.Messenger, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		engine:    e,
		config:    cfg,
		messenger: m,
		decoder:   msgpack.NewDecoder(bufio.NewReader(r)),
		encoder:   msgpack.NewEncoder(w),
		log:       logger.New("server"),
	}
}

// Start signals readiness and serves requests until the input ends.
func (s *Server) Start() error {
	s.log.Debug("Starting Server.")
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}

		var request Request
		if err := msgpack.Unmarshal(raw, &request); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(request)
	}
}

// Requests returns how many requests were handled.
func (s *Server) Requests() int { return s.requestCount }

func (s *Server) handleRequest(request Request) {
	s.requestCount++
	switch request.Action {
	case "", ActionQuery:
		s.handleQuery(request)
	case ActionCommit:
		s.handleCommit(request)
	case ActionStats:
		s.handleStats(request)
	case ActionHealth:
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown action: %s", request.Action), 400)
	}
}

func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}

// handleQuery validates the input, translates it and sends the ranked
// candidates. Input the syllabifier can never read yields an empty answer.
func (s *Server) handleQuery(request Request) {
	input := utils.NormalizeInput(request.Input)
	srv := s.config.Server

	if input == "" {
		s.sendError(request.ID, "Missing 'i' parameter", 400)
		s.log.Debug("Input is empty in request")
		return
	}
	if len(input) < srv.MinInput {
		s.sendError(request.ID, fmt.Sprintf("Input must be at least %d characters", srv.MinInput), 400)
		return
	}
	if len(input) > srv.MaxInput {
		s.sendError(request.ID, fmt.Sprintf("Input exceeds maximum length of %d characters", srv.MaxInput), 400)
		return
	}

	limit := s.limit(request.Limit)
	s.last = nil
	if s.messenger != nil {
		s.messenger.Publish(messenger.TypeQuery, input)
	}

	start := time.Now()
	if utils.IsValidInput(input, s.config.Engine.Delimiters) {
		s.last = s.engine.Query(input, limit)
	}
	elapsed := time.Since(start)

	ranks := utils.CreateRankList(len(s.last))
	candidates := make([]Candidate, len(s.last))
	for i, c := range s.last {
		candidates[i] = Candidate{
			Text:    c.Text(),
			Comment: c.Comment(),
			Type:    c.Type(),
			Start:   c.Start(),
			End:     c.End(),
			Rank:    ranks[i],
		}
	}
	s.log.Debugf("Took [ %v ] for input '%s'", elapsed, input)

	s.sendResponse(QueryResponse{
		ID:         request.ID,
		Candidates: candidates,
		Count:      len(candidates),
		TimeTaken:  elapsed.Microseconds(),
	})
}

// limit clamps a requested limit to the server maximum; zero asks for the
// translator default.
func (s *Server) limit(requested int) int {
	return utils.ClampLimit(requested, s.config.Translator.MaxCandidates, s.config.Server.MaxLimit)
}

func (s *Server) handleCommit(request Request) {
	var texts []string
	switch {
	case request.Rank > 0:
		if request.Rank > len(s.last) {
			s.sendError(request.ID, fmt.Sprintf("No candidate ranked %d", request.Rank), 404)
			return
		}
		texts = s.engine.Learnable(s.last[request.Rank-1])
	case request.Text != "":
		texts = []string{request.Text}
	default:
		s.sendError(request.ID, "Missing 'n' or 'x' parameter", 400)
		return
	}

	for _, text := range texts {
		if s.messenger != nil {
			s.messenger.Publish(messenger.TypeCommit, text)
		} else {
			s.engine.Learn(text)
		}
	}
	if texts == nil {
		texts = []string{}
	}
	s.sendResponse(CommitResponse{ID: request.ID, Status: "ok", Learned: texts})
}

func (s *Server) handleStats(request Request) {
	stats := s.engine.Stats()
	s.sendResponse(StatsResponse{
		ID:        request.ID,
		Status:    "ok",
		Syllables: stats.Syllables,
		Phrases:   stats.Phrases,
		Learned:   stats.Learned,
		Commits:   stats.Commits,
		Requests:  s.requestCount,
	})
}
