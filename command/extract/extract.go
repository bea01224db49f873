package extract

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"oscost/connectors/config"
	ccsv "oscost/connectors/csv"
	"oscost/connectors/redhat"
	"oscost/connectors/xlsx"
	"oscost/domain/report"
)

// Run executes the extract subcommand: collect cost and usage data for the
// requested period, assemble the report tables and write the workbook plus
// the CSV exports. The workbook is only written once every report is
// assembled.
func Run(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	startDate := fs.String("start-date", "", "start of the period, YYYY-MM-DD (default: 30 days ago)")
	endDate := fs.String("end-date", "", "end of the period, YYYY-MM-DD (default: today)")
	output := fs.String("output", "openshift_costs.xlsx", "workbook output path")
	currency := fs.String("currency", "BRL", "ISO currency code for the cost reports")
	dataDir := fs.String("data", "data", "directory for the CSV report tables (empty to skip)")
	usageCodes := fs.String("usage-codes", "", "comma-separated usage report codes (default: compute,memory,volumes)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *endDate == "" {
		*endDate = time.Now().Format("2006-01-02")
	}
	if *startDate == "" {
		*startDate = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("extract.validation.error", "error", err)
		return err
	}
	if *usageCodes != "" {
		cfg.UsageCodes = splitList(*usageCodes)
	}

	log := slog.With("run", uuid.NewString())
	log.Info("extract.start", "start", *startDate, "end", *endDate, "currency", *currency, "output", *output)

	ctx := context.Background()
	client := redhat.NewClient(cfg.ConsoleURL, cfg.AuthURL, cfg.ClientID, cfg.ClientSecret)

	data, dimErrs, err := client.CollectCosts(ctx, *startDate, *endDate, *currency, cfg.TagKey)
	if err != nil {
		log.Error("extract.costs.fatal", "error", err)
		return err
	}
	for dim, derr := range dimErrs {
		log.Warn("extract.dimension.skipped", "dimension", dim, "error", derr)
	}

	// Soft lookups: the workbook falls back to documented defaults when these fail.
	currencies, err := client.Currencies(ctx)
	if err != nil {
		log.Warn("extract.currencies.fetch.error", "error", err)
	}
	settings, err := client.AccountSettings(ctx)
	if err != nil {
		log.Warn("extract.settings.fetch.error", "error", err)
	}
	tagKeys, err := client.TagKeys(ctx)
	if err != nil {
		log.Warn("extract.tag_keys.fetch.error", "error", err)
	}

	keys := []string{cfg.TagKey}
	if tagKeys != nil {
		for _, t := range tagKeys.Tags {
			if t.Key != "" {
				keys = append(keys, t.Key)
			}
		}
	}
	keys = lo.Uniq(keys)
	sort.Strings(keys)

	tables := []report.Table{
		report.DataPeriod(*startDate, *endDate),
		report.DefaultMasterSettings(currencies, settings, *currency),
		report.OverheadCostTypes(),
		report.GroupBys(),
		report.TagKeys(tagKeys, cfg.TagKey),
		report.ClusterProjects(ctx, client, data, *startDate, *endDate, *currency),
		report.ProjectTags(ctx, client, data, *startDate, *endDate, *currency),
		report.CostsDaily(data, *currency),
		report.DailyUsage(ctx, client, cfg.UsageCodes, keys, *startDate, *endDate, *currency),
	}

	if err := xlsx.WriteWorkbook(*output, tables); err != nil {
		log.Error("extract.workbook.write.error", "error", err)
		return err
	}
	if *dataDir != "" {
		if err := ccsv.WriteAllCSVs(*dataDir, tables); err != nil {
			log.Warn("extract.csv.write.error", "error", err)
			fmt.Fprintf(os.Stderr, "failed to write CSV outputs: %v\n", err)
		}
	}

	printSummary(tables)
	log.Info("extract.done", "output", *output, "sheets", len(tables))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// printSummary renders the sheet/row recap on stdout.
func printSummary(tables []report.Table) {
	tw := table.Table{}
	tw.AppendHeader(table.Row{"Sheet", "Rows"})
	for _, t := range tables {
		tw.AppendRow(table.Row{t.Name, len(t.Rows)})
	}
	tw.SetStyle(table.StyleRounded)
	fmt.Println(tw.Render())
}
