// Package cli handles cmd line input and candidates for DBG and testing various features
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/sylla/internal/logger"
	"github.com/bastiangx/sylla/internal/utils"
	"github.com/bastiangx/sylla/pkg/candidate"
	"github.com/bastiangx/sylla/pkg/engine"
	"github.com/charmbracelet/log"
)

// InputHandler processes user input from stdin and prints the candidates of
// each line. A line holding only a number commits that candidate of the
// previous answer; ":stats" prints engine statistics.
type InputHandler struct {
	engine         *engine.Engine
	minInputLength int
	maxInputLength int
	limit          int
	noFilter       bool
	requestCount   int
	last           candidate.List
	reader         io.Reader
	log            *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(e *engine.Engine, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	h := NewInputHandlerWithIO(e, minLength, maxLength, limit, noFilter, os.Stdin, os.Stderr)
	h.log = log.Default()
	return h
}

// NewInputHandlerWithIO reads lines from r and prints to w.
func NewInputHandlerWithIO(e *engine.Engine, minLength, maxLength, limit int, noFilter bool, r io.Reader, w io.Writer) *InputHandler {
	return &InputHandler{
		engine:         e,
		minInputLength: minLength,
		maxInputLength: maxLength,
		limit:          limit,
		noFilter:       noFilter,
		reader:         r,
		log:            logger.NewWithWriter(w, ""),
	}
}

// Start begins the interface loop.
// It reads lines until the input ends and passes each trimmed line to
// handleInput().
func (h *InputHandler) Start() error {
	h.log.Print("Sylla CLI [BETA]")
	h.log.Print("type some syllables and press Enter to see the candidates, a number to commit one (Ctrl+C to exit):")

	reader := bufio.NewReader(h.reader)
	for {
		h.log.Print("> ")
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	switch {
	case line == ":stats":
		h.printStats()
	case utils.IsOnlyNumbers(line):
		h.commit(line)
	default:
		h.query(line)
	}
}

func (h *InputHandler) commit(line string) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(h.last) {
		h.log.Errorf("No candidate numbered %s", line)
		return
	}
	c := h.last[n-1]
	learned := h.engine.Commit(c)
	h.log.Printf("Committed '%s' (%d learned)", c.Text(), learned)
	h.last = nil
}

// query validates the input's length and content, then asks the engine for
// candidates. Results are formatted and printed to the log.
func (h *InputHandler) query(line string) {
	input := utils.NormalizeInput(line)
	if len(input) < h.minInputLength {
		h.log.Errorf("Input too short: %s", input)
		return
	}
	if len(input) > h.maxInputLength {
		h.log.Errorf("Input too long: %s", input)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter && !utils.IsValidInput(input, h.engine.Options().Delimiters) {
		h.log.Infof("No results found for input: '%s'", input)
		return
	}

	start := time.Now()
	h.last = h.engine.Query(input, h.limit)
	h.log.Debugf("Took [ %v ] for input '%s'", time.Since(start), input)

	if len(h.last) == 0 {
		h.log.Warnf("No candidates found for input: '%s'", input)
		return
	}

	h.log.Printf("Found %d candidates for input '%s':", len(h.last), input)
	for i, c := range h.last {
		text := fmt.Sprintf("\033[38;5;75m%s\033[0m", c.Text())
		h.log.Printf("%2d. %-24s [%d,%d) %-10s %8.3f %s", i+1, text, c.Start(), c.End(), c.Type(), c.Quality(), c.Comment())
	}
}

func (h *InputHandler) printStats() {
	stats := h.engine.Stats()
	h.log.Printf("syllables: %s", utils.FormatWithCommas(stats.Syllables))
	h.log.Printf("phrases:   %s", utils.FormatWithCommas(stats.Phrases))
	h.log.Printf("learned:   %s", utils.FormatWithCommas(stats.Learned))
	h.log.Printf("commits:   %s", utils.FormatWithCommas(int(stats.Commits)))
}
