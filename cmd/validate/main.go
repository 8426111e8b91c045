// Command validate checks that a URL serves a well-formed nowcasting feed,
// the same check run before a feed is configured for polling. It prints "ok"
// and a short summary, or the failure code (cannot_connect, invalid_xml,
// unknown), and exits non-zero on failure.
//
// Usage:
//
//	go run ./cmd/validate -url https://www.meteoromania.ro/xml/avertizari-nowcasting.xml
//	go run ./cmd/validate -url http://localhost:8081/feed.xml -timeout 5s -dump
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-xmlfmt/xmlfmt"

	"github.com/couchcryptid/nowcast-alerts/internal/adapter/meteo"
	"github.com/couchcryptid/nowcast-alerts/internal/config"
	"github.com/couchcryptid/nowcast-alerts/internal/observability"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	url := fs.String("url", config.DefaultFeedURL, "feed URL to check")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	maxBytes := fs.Int64("max-bytes", 5<<20, "maximum accepted body size")
	dump := fs.Bool("dump", false, "pretty-print the document after a successful check")
	verbose := fs.Bool("v", false, "log request details to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := observability.NewLogger(level, "text")

	client := meteo.NewClient(meteo.Options{
		URL:             *url,
		PollTimeout:     *timeout,
		ValidateTimeout: *timeout,
		MaxBytes:        *maxBytes,
	}, logger)

	info, body, err := client.Inspect(context.Background(), *url)
	if err != nil {
		fmt.Fprintln(stdout, meteo.ValidationCodeOf(err))
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintln(stdout, "ok")
	fmt.Fprintf(stdout, "root=<%s> warnings=%d", info.Root, info.Warnings)
	if info.Tag != "" {
		fmt.Fprintf(stdout, " tag=<%s>", info.Tag)
	}
	fmt.Fprintln(stdout)

	if *dump {
		fmt.Fprintln(stdout, xmlfmt.FormatXML(string(body), "", "  "))
	}
	return 0
}
