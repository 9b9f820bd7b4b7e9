// Command website picks a lead's business website from a scraped profile record.
//
// Usage:
//
//	website profile.json
//	apify-export | website -all -block calendly.com,wa.me
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/website"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("website", flag.ContinueOnError)
	fs.SetOutput(stderr)
	all := fs.Bool("all", false, "print every candidate that survives the blacklist, with its source key")
	block := fs.String("block", "", "comma-separated hosts to add to the blacklist")
	asJSON := fs.Bool("json", false, "print JSON instead of plain text")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: website [options] [file.json]")
		fmt.Fprintln(stderr, "\nReads a scraped profile record from the file, or stdin when no file is given.")
		fmt.Fprintln(stderr, "\nOptions:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	data, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		return err
	}
	rec, err := website.FromJSON(data)
	if err != nil {
		return err
	}

	var extra []string
	for h := range strings.SplitSeq(*block, ",") {
		if h = strings.TrimSpace(h); h != "" {
			extra = append(extra, h)
		}
	}
	ex := website.New(website.WithExtraHosts(extra...), website.WithLogger(logger))
	logger.Debug("blacklist", "hosts", ex.Blacklist().Hosts())

	if *all {
		cands, err := ex.Candidates(rec)
		if err != nil {
			return err
		}
		if *asJSON {
			return outputJSON(stdout, cands)
		}
		for _, c := range cands {
			fmt.Fprintf(stdout, "%s\t%s\n", c.URL, c.Source)
		}
		return nil
	}

	site, err := ex.Extract(rec)
	if err != nil {
		return err
	}
	if *asJSON {
		return outputJSON(stdout, map[string]string{"website": site})
	}
	if site == "" {
		logger.Info("no website found")
		return nil
	}
	fmt.Fprintln(stdout, site)
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return data, nil
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
