// Command report serves a completed run directory over HTTP: the
// parameters page rendered from markdown, the manifest and both table
// exports.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"neuroslope/internal"
	"neuroslope/internal/report"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: report <run-dir>")
		os.Exit(1)
	}
	runDir := os.Args[1]
	if st, err := os.Stat(runDir); err != nil || !st.IsDir() {
		fmt.Fprintf(os.Stderr, "not a run directory: %s\n", runDir)
		os.Exit(1)
	}

	port := os.Getenv("REPORT_PORT")
	if port == "" {
		port = "8090"
	}

	logger := internal.NewDefaultLogger()
	srv := report.NewServer(runDir, logger)
	if err := srv.ListenAndServe(port); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
