// Package engine turns raw romanized input into a ranked stream of phrase
// candidates. Input is syllabified into a lattice, the lattice is walked
// along the phrase table's code index, and the phrases found are served
// longest span first, best quality first.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/bastiangx/sylla/internal/logger"
	"github.com/bastiangx/sylla/pkg/candidate"
	"github.com/bastiangx/sylla/pkg/config"
	"github.com/bastiangx/sylla/pkg/corrector"
	"github.com/bastiangx/sylla/pkg/dictionary"
	"github.com/bastiangx/sylla/pkg/history"
	"github.com/bastiangx/sylla/pkg/messenger"
	"github.com/bastiangx/sylla/pkg/prism"
	"github.com/bastiangx/sylla/pkg/syllable"
	"github.com/bastiangx/sylla/pkg/translation"
	"github.com/charmbracelet/log"
)

// Candidate types produced by the engine.
const (
	TypePhrase     = "phrase"
	TypeFuzzy      = "fuzzy"
	TypeAbbrev     = "abbrev"
	TypeCompletion = "completion"
	TypeCorrection = "correction"
	TypeRaw        = "raw"
)

// rawQuality ranks the echo of the raw input below any phrase.
const rawQuality = -1000.0

// Options configures an Engine.
type Options struct {
	Delimiters         string
	EnableCompletion   bool
	EnableCorrection   bool
	StrictSpelling     bool
	EnableAbbreviation bool
	FuzzyRules         []prism.Rule
	MaxSyllables       int
	PrefetchSize       int
	PrefetchLowWater   int
	HistoryWeight      float64
}

// DefaultOptions mirrors config.DefaultConfig.
func DefaultOptions() Options {
	opts, _ := OptionsFromConfig(config.DefaultConfig())
	return opts
}

// OptionsFromConfig converts the engine and translator sections of cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	rules, err := prism.ParseRules(cfg.Engine.Fuzzy)
	if err != nil {
		return Options{}, fmt.Errorf("engine.fuzzy: %w", err)
	}
	return Options{
		Delimiters:         cfg.Engine.Delimiters,
		EnableCompletion:   cfg.Engine.EnableCompletion,
		EnableCorrection:   cfg.Engine.EnableCorrection,
		StrictSpelling:     cfg.Engine.StrictSpelling,
		EnableAbbreviation: cfg.Engine.EnableAbbreviation,
		FuzzyRules:         rules,
		MaxSyllables:       cfg.Translator.MaxSyllables,
		PrefetchSize:       cfg.Translator.PrefetchSize,
		PrefetchLowWater:   cfg.Translator.PrefetchLowWater,
		HistoryWeight:      cfg.Translator.HistoryWeight,
	}, nil
}

// Engine is safe for concurrent use.
type Engine struct {
	table       *dictionary.Table
	prism       *prism.Prism
	syllabifier *syllable.Syllabifier
	history     *history.History
	opts        Options
	log         *log.Logger
}

// Stats describes the loaded engine.
type Stats struct {
	Syllables int
	Phrases   int
	Learned   int
	Commits   int64
}

// New builds an engine over table. Configuration errors surface here and
// never from queries.
func New(table *dictionary.Table, opts Options) (*Engine, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("engine: %w", dictionary.ErrEmptyTable)
	}
	if opts.MaxSyllables < 1 {
		return nil, errors.New("engine: max syllables must be positive")
	}

	prismOpts := []prism.Option{prism.WithAbbreviations(opts.EnableAbbreviation)}
	if len(opts.FuzzyRules) > 0 {
		prismOpts = append(prismOpts, prism.WithRules(opts.FuzzyRules...))
	}
	p := prism.New(table.Syllabary(), prismOpts...)

	s := syllable.New(
		syllable.WithDelimiters(opts.Delimiters),
		syllable.WithCompletion(opts.EnableCompletion),
		syllable.WithStrictSpelling(opts.StrictSpelling),
	)
	if opts.EnableCorrection {
		s.EnableCorrection(corrector.New(p.Syllables()))
	}

	e := &Engine{
		table:       table,
		prism:       p,
		syllabifier: s,
		history:     history.New(),
		opts:        opts,
		log:         logger.New("engine"),
	}
	e.log.Debug("engine ready", "syllables", p.Size(), "phrases", table.Len())
	return e, nil
}

// Options returns the options the engine was built with.
func (e *Engine) Options() Options { return e.opts }

// Syllabify builds the syllable graph of input.
func (e *Engine) Syllabify(input string) *syllable.Graph {
	return e.syllabifier.BuildSyllableGraph(input, e.prism)
}

// Syllable returns the text of a syllable ID of the engine's graphs.
func (e *Engine) Syllable(id syllable.ID) string {
	return e.prism.Syllable(id)
}

// Translate returns the candidate stream for input: phrases of every span
// merged by priority, then an echo of the raw input, without repeated
// texts, read ahead by a prefetch buffer.
func (e *Engine) Translate(input string) translation.Translation {
	merged := translation.NewMerged()
	g := e.Syllabify(input)
	if !g.Empty() {
		for _, fifo := range e.match(g) {
			merged.Add(fifo)
		}
	}

	union := translation.NewUnion(merged)
	if input != "" {
		raw := candidate.NewSimple(TypeRaw, 0, len(input), input, "", input)
		raw.SetQuality(rawQuality)
		union.Add(translation.NewUnique(raw))
	}
	return translation.NewPrefetch(translation.NewDistinct(union), e.opts.PrefetchSize, e.opts.PrefetchLowWater)
}

// Query returns up to limit candidates for input; limit <= 0 returns all.
func (e *Engine) Query(input string, limit int) candidate.List {
	return translation.Drain(e.Translate(input), limit)
}

// Learnable returns the texts a commit of c teaches: each genuine phrase
// behind it once, never the raw echo.
func (e *Engine) Learnable(c candidate.Candidate) []string {
	if c == nil {
		return nil
	}
	var texts []string
	seen := make(map[string]bool)
	for _, g := range candidate.GenuineAll(c) {
		if g.Type() == TypeRaw || seen[g.Text()] {
			continue
		}
		seen[g.Text()] = true
		texts = append(texts, g.Text())
	}
	return texts
}

// Commit learns every genuine phrase behind c.
func (e *Engine) Commit(c candidate.Candidate) int {
	texts := e.Learnable(c)
	for _, text := range texts {
		e.history.Learn(text)
	}
	if c != nil {
		e.log.Debugf("committed %q (%d learned)", c.Text(), len(texts))
	}
	return len(texts)
}

// Learn records a commit of text.
func (e *Engine) Learn(text string) {
	e.history.Learn(text)
}

// Listen learns from commit messages until ctx is done or msgs is closed.
func (e *Engine) Listen(ctx context.Context, msgs <-chan messenger.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if msg.Type == messenger.TypeCommit {
				e.Learn(msg.Value)
			}
		}
	}
}

// Stats returns engine statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		Syllables: e.prism.Size(),
		Phrases:   e.table.Len(),
		Learned:   e.history.Len(),
		Commits:   e.history.Tick(),
	}
}
