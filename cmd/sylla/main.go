// Copyright 2025 The Sylla Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the phonetic input server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

Sylla turns romanized syllable input such as "nihao" or "xi'an" into ranked
phrase candidates. Input is split into a lattice of every plausible
syllable reading, the lattice is matched against a phrase table, and the
candidates are streamed longest span first, best quality first. It can
operate as a MessagePack IPC server for integration with editors and input
frontends, or as a CLI application for testing and debugging.

# Usage

Start the server with default settings:

	sylla

Use a custom phrase table and enable debug mode:

	sylla -dict /path/to/phrases.txt -d

Run in CLI mode for interactive testing:

	sylla -c -limit 10

Compile a text table into the binary format and exit:

	sylla -dict data/ -compile data/phrases.bin

# Phrase tables

A text table holds one phrase per line: the text, its syllables separated by
spaces and an optional weight, separated by tabs. Lines starting with '#'
are comments.

	你好	ni hao	100
	西安	xi an	10

A directory is loaded file by file; .txt, .tsv and .bin files are read.

# Configuration

Runtime configuration is managed through a TOML file that is created with
defaults when missing:

	[engine]
	delimiters = "'"
	enable_completion = true
	enable_correction = false
	strict_spelling = false
	enable_abbreviation = true
	fuzzy = ["zh:z", "ch:c", "sh:s"]

	[translator]
	max_candidates = 24
	max_syllables = 8
	prefetch_size = 8
	prefetch_low_water = 2
	history_weight = 1.0

	[server]
	max_limit = 64
	min_input = 1
	max_input = 60

	[dict]
	path = "data/"

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See package
server for the message shapes.

	{"id": "q1", "i": "nihao", "l": 5}
	{"id": "c1", "action": "commit", "n": 1}

Commits flow through the messenger to the engine's history, so phrases a
user picks rise in later queries.

# Command Line Flags

	-dict string
	    Phrase table file or directory (default from config)
	-config string
	    Path to a TOML config file
	-d  Enable debug mode with detailed logging
	-c  Run CLI -- useful for testing and debugging
	-limit int
	    Number of candidates to return in CLI mode
	-inmin int
	    Minimum input length in CLI mode
	-inmax int
	    Maximum input length in CLI mode
	-no-filter
	    Disable input filtering in CLI mode
	-compile string
	    Write the loaded table in binary format to this file and exit
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/sylla/internal/cli"
	"github.com/bastiangx/sylla/internal/logger"
	"github.com/bastiangx/sylla/internal/utils"
	"github.com/bastiangx/sylla/pkg/config"
	"github.com/bastiangx/sylla/pkg/dictionary"
	"github.com/bastiangx/sylla/pkg/engine"
	"github.com/bastiangx/sylla/pkg/messenger"
	"github.com/bastiangx/sylla/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	gh      = "https://github.com/bastiangx/sylla"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		cancel()
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigHandler(cancel)
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dictPath := flag.String("dict", "", "Phrase table file or directory (default from config)")
	configPath := flag.String("config", "", "Path to a TOML config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaults.Translator.MaxCandidates, "Number of candidates to return")
	minInput := flag.Int("inmin", defaults.Server.MinInput, "Minimum input length (1 <= n <= inmax)")
	maxInput := flag.Int("inmax", defaults.Server.MaxInput, "Maximum input length")
	noFilter := flag.Bool("no-filter", false, "Disable input filtering (DBG only)")
	compile := flag.String("compile", "", "Write the loaded table in binary format to this file and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetDefault(logger.NewWithConfig("", log.DebugLevel, true, true, log.TextFormatter))
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfig))

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Print("Either env is not set or system is not supported")
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	requested := cfg.Dict.Path
	if *dictPath != "" {
		requested = *dictPath
	}
	resolvedDict := pathResolver.GetDictPath(requested)
	log.Debugf("Using dictionary at: %s", resolvedDict)

	table, stats, err := dictionary.Load(resolvedDict)
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}
	log.Debug("Dictionary loaded", "files", stats.Files, "phrases", stats.Entries, "skipped", stats.Skipped)

	if *compile != "" {
		if err := compileTable(table, *compile); err != nil {
			log.Fatalf("Failed to compile dictionary: %v", err)
		}
		log.Printf("Wrote %s phrases to %s", utils.FormatWithCommas(table.Len()), *compile)
		return
	}

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid engine config: %v", err)
	}
	eng, err := engine.New(table, opts)
	if err != nil {
		log.Fatalf("Failed to init engine: %v", err)
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"minInput", *minInput,
			"maxInput", *maxInput,
			"limit", *limit,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(eng, *minInput, *maxInput, *limit, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	msgr := messenger.New(messenger.DefaultCapacity)
	defer msgr.Close()
	commits, unsubscribe := msgr.Subscribe()
	defer unsubscribe()
	go eng.Listen(ctx, commits)

	log.Debug("spawning IPC")
	srv := server.NewServer(eng, cfg, msgr)
	showStartupInfo(resolvedDict, table.Len())

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func compileTable(table *dictionary.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dictionary.WriteBinary(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ Sylla ] Turns syllables into phrases.")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dictPath string, phrases int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	log.Info("===========")
	log.Info("   Sylla   ")
	log.Info("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("dictionary: ( %s ), %s phrases", dictPath, utils.FormatWithCommas(phrases))
	log.Info("status: ready")
	log.Info("Press Ctrl+C to exit")
}
