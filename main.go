package main

import (
	"fmt"
	"log/slog"
	"os"

	cmdextract "oscost/command/extract"
	cmdserve "oscost/command/serve"
)

// OpenShift cost and usage extractor for the Red Hat Cost Management API.
// Usage:
//   OPENSHIFT_CLIENT_ID=xxx OPENSHIFT_CLIENT_SECRET=xxx go run . extract [-start-date 2026-07-01] [-end-date 2026-07-31] [-output openshift_costs.xlsx]
// Notes:
// - extract collects daily costs grouped by cluster, project, node and tag,
//   drills into per-cluster projects and per-project tags, pulls the compute,
//   memory and volumes usage reports, and writes everything as one workbook
//   plus CSV report tables.
// - serve exposes the exported CSV tables as JSON for dashboards.
// - Requires a service account with Cost Management read access.

func main() {
	args := os.Args
	// Initialize slog logger (text to stderr)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	if len(args) > 1 {
		sub := args[1]
		rest := append([]string{}, args[2:]...)
		switch sub {
		case "extract":
			if err := cmdextract.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		case "serve":
			if err := cmdserve.Run(rest); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: oscost extract [-start-date YYYY-MM-DD] [-end-date YYYY-MM-DD] [-output file.xlsx] [-currency BRL] [-data ./data] | serve [-addr :8080] [-data ./data]\nENV: OPENSHIFT_CLIENT_ID and OPENSHIFT_CLIENT_SECRET are required; set CONFIG_PATH to point to a YAML config file (default ./config.yml)")
	os.Exit(2)
}
