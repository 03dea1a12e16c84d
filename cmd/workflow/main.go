package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/faralocal/examflow/internal/assembler"
	"github.com/faralocal/examflow/internal/runner"
	"github.com/faralocal/examflow/internal/workflow"
)

type cliOptions struct {
	mode string // "run" or "assemble"

	// run mode
	workflowFile string

	// assemble mode
	fragmentDir string
	outputFile  string
	spreadsheet string
}

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	opts := parseFlags()

	switch opts.mode {
	case "assemble":
		runAssemble(opts)
	default:
		runWorkflow(opts)
	}
}

func parseFlags() cliOptions {
	mode := flag.String("mode", "run", "run | assemble")
	workflowFile := flag.String("workflow", "", "Path to an assembled workflow JSON document")
	fragmentDir := flag.String("fragments", "", "Directory of numbered fragment files (assemble mode)")
	output := flag.String("output", "", "Output path for the assembled workflow (assemble mode)")
	spreadsheet := flag.String("excel", "", "Spreadsheet path; when set, the engine iterates group_excel over it")
	flag.Parse()
	return cliOptions{
		mode:         strings.TrimSpace(*mode),
		workflowFile: strings.TrimSpace(*workflowFile),
		fragmentDir:  strings.TrimSpace(*fragmentDir),
		outputFile:   strings.TrimSpace(*output),
		spreadsheet:  strings.TrimSpace(*spreadsheet),
	}
}

func runAssemble(opts cliOptions) {
	if opts.fragmentDir == "" || opts.outputFile == "" {
		log.Fatal().Msg("assemble mode requires -fragments and -output")
	}
	success, logs := assembler.Process(opts.fragmentDir, opts.outputFile, opts.spreadsheet)
	if logs != "" {
		fmt.Println(logs)
	}
	if !success {
		log.Error().Msg("assembly completed with warnings")
		os.Exit(1)
	}
	log.Info().Str("output", opts.outputFile).Msg("workflow assembled")
}

func runWorkflow(opts cliOptions) {
	if opts.workflowFile == "" {
		log.Fatal().Msg("run mode requires -workflow")
	}

	steps, err := loadSteps(opts.workflowFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load workflow")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	_ = ctx // the runner itself is synchronous; cancellation is via closing the browser window

	cfg := runner.Config{
		ProfileDir: firstNonEmpty(os.Getenv("AGENT_PROFILE_DIR"), "automation_profile"),
		Headless:   parseBoolEnv("AGENT_HEADLESS", false),
		Locale:     os.Getenv("AGENT_LOCALE"),
		Timezone:   os.Getenv("AGENT_TIMEZONE"),
		StartURL:   os.Getenv("AGENT_START_URL"),
	}
	if w := os.Getenv("AGENT_VIEWPORT_WIDTH"); w != "" {
		if n, err := strconv.Atoi(w); err == nil {
			cfg.ViewportWidth = n
		}
	}
	if h := os.Getenv("AGENT_VIEWPORT_HEIGHT"); h != "" {
		if n, err := strconv.Atoi(h); err == nil {
			cfg.ViewportHeight = n
		}
	}

	r, err := runner.Launch(cfg, log.With().Str("comp", "runner").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("launch browser")
	}

	records, runErr := r.Run(steps)
	for _, rec := range records {
		entry := log.With().Str("title", rec.Title).Logger()
		switch rec.Level {
		case "warn":
			entry.Warn().Msg(rec.Msg)
		case "error":
			entry.Error().Msg(rec.Msg)
		default:
			entry.Info().Msg(rec.Msg)
		}
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("workflow run finished with a fatal error")
		os.Exit(1)
	}

	if err := r.Close(); err != nil {
		log.Warn().Err(err).Msg("close browser")
	}
	log.Info().Msg("workflow completed")
}

func loadSteps(path string) ([]workflow.Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var steps []workflow.Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseBoolEnv(name string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(name))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
