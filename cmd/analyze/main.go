// Command analyze runs the analysis workflow over a statement file and
// prints the dashboard as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"finsight/internal/analytics"
	"finsight/internal/ingest"
	"finsight/internal/workflow"
)

func main() {
	var (
		rulesFile = flag.String("category-rules", "", "YAML keyword rules for categorization")
		window    = flag.Int("window", analytics.DefaultWindowMonths, "trailing months for time series")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <statement.csv|statement.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *rulesFile, *window, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		os.Exit(1)
	}
}

func run(path, rulesFile string, window int, verbose bool) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := workflow.Options{
		WindowMonths: window,
		Logger:       logger,
	}
	if rulesFile != "" {
		f, err := ingest.LoadRulesFile(rulesFile)
		if err != nil {
			return err
		}
		opts.Engine = analytics.NewEngine(f.EngineRules(), logger)
		opts.Categorizer = ingest.NewRuleCategorizer(f.Keywords)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	state, report := workflow.NewRunner(opts).Run(context.Background(), workflow.StatementSource{
		Name:   path,
		Reader: f,
	})
	if state.ErrorMessage != "" {
		return fmt.Errorf("%s (run %s)", state.ErrorMessage, report.RunID)
	}

	return writeJSON(os.Stdout, state.Dashboard)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
