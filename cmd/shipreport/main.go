// Command shipreport prints the delivery forecast of a container register
// workbook for one week, month or quarter, and optionally writes the series
// as CSV.
//
//	shipreport -file register.xlsx -now 2025-07-30 -granularity month -out forecast.csv
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/marcojr93/cntrackerv1/internal/calendar"
	"github.com/marcojr93/cntrackerv1/internal/config"
	"github.com/marcojr93/cntrackerv1/internal/exporter"
	"github.com/marcojr93/cntrackerv1/internal/infrastructure"
	"github.com/marcojr93/cntrackerv1/internal/register"
	"github.com/marcojr93/cntrackerv1/internal/services"
	"github.com/marcojr93/cntrackerv1/internal/validation"
)

type options struct {
	config      string
	file        string
	sheet       string
	headerRow   int
	layout      string
	week        string
	granularity string
	month       string
	now         string
	out         string
	verbose     bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "shipreport:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("shipreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.config, "config", "", "YAML config file")
	fs.StringVar(&opts.file, "file", "", "register workbook, or a directory whose newest .xlsx is used (defaults to register.path)")
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet name (defaults to register.sheet)")
	fs.IntVar(&opts.headerRow, "header-row", 0, "1-based header row (defaults to register.header_row)")
	fs.StringVar(&opts.layout, "layout", "", "column layout: soon, shipping or a configured layout")
	fs.StringVar(&opts.week, "week", "", "week index or catalog label such as \"2025 - Week 31 (Jul 28-Aug 01)\" (defaults to the week of -now)")
	fs.StringVar(&opts.granularity, "granularity", "week", "week, month or quarter")
	fs.StringVar(&opts.month, "month", "", "month anchor YYYY-MM for month granularity")
	fs.StringVar(&opts.now, "now", "", "reference date YYYY-MM-DD (defaults to today)")
	fs.StringVar(&opts.out, "out", "", "write the forecast series to this CSV file")
	fs.BoolVar(&opts.verbose, "v", false, "log progress to stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

// loadConfig applies flag overrides on top of the file and environment
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.LoadFile(opts.config)
	if err != nil {
		return nil, err
	}
	if opts.file != "" {
		cfg.Register.Path = opts.file
	}
	if opts.sheet != "" {
		cfg.Register.Sheet = opts.sheet
	}
	if opts.headerRow > 0 {
		cfg.Register.HeaderRow = opts.headerRow
	}
	if opts.layout != "" {
		cfg.Register.Layout = opts.layout
	}
	cfg.Telemetry.EnableMetrics = false
	cfg.Telemetry.EnableTracing = false
	cfg.Logging.Output = "console"
	if !opts.verbose {
		cfg.Logging.Level = "warn"
	}
	return cfg, nil
}

// selection converts the week, granularity, month and now flags
func selection(opts options, catalog *calendar.Catalog) (services.Selection, error) {
	sel := services.Selection{WeekIndex: services.CurrentWeek}

	if opts.now != "" {
		now, err := time.Parse(time.DateOnly, opts.now)
		if err != nil {
			return sel, fmt.Errorf("invalid -now %q: want YYYY-MM-DD", opts.now)
		}
		sel.Now = now
	}

	if opts.week != "" {
		if idx, err := strconv.Atoi(opts.week); err == nil {
			sel.WeekIndex = idx
		} else if idx, ok := catalog.Find(opts.week); ok {
			sel.WeekIndex = idx
		} else {
			return sel, fmt.Errorf("unknown week %q", opts.week)
		}
	}

	g, err := calendar.ParseGranularity(opts.granularity)
	if err != nil {
		return sel, err
	}
	sel.Granularity = g

	if opts.month != "" {
		m, err := calendar.ParseMonth(opts.month)
		if err != nil {
			return sel, err
		}
		sel.Month = &m
	}
	return sel, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, _, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	loadOpts, err := cfg.LoadOptions()
	if err != nil {
		return err
	}
	store, err := register.NewStore(register.Options{
		Source:    cfg.Register.Path,
		Load:      loadOpts,
		Validator: validation.NewFileValidator(logger),
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	stats, err := store.Reload(ctx)
	if err != nil {
		return err
	}

	catalog := calendar.NewCatalog(cfg.Calendar.Years)
	sel, err := selection(opts, catalog)
	if err != nil {
		return err
	}

	dashboard, err := services.NewDashboardService(store, catalog, nil, nil, logger).Dashboard(ctx, sel)
	if err != nil {
		return err
	}

	if err := printReport(stdout, stats, dashboard); err != nil {
		return err
	}

	if opts.out != "" {
		if err := exporter.WriteFile(opts.out, exporter.WriteOptions{
			Headers: exporter.SeriesHeaders,
			Records: exporter.SeriesRecords(dashboard.Series),
		}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nSeries written to %s\n", opts.out)
	}
	return nil
}

func printReport(w io.Writer, stats register.Stats, d *services.Dashboard) error {
	fmt.Fprintf(w, "Register: %s (%d rows, %d unparsable dates, %d without date)\n",
		stats.Path, stats.Rows, stats.UnparsableDates, stats.MissingDates)
	fmt.Fprintf(w, "Week:     %s\n", d.Week.Label)
	fmt.Fprintf(w, "Period:   %s (%s to %s)\n\n", d.Period.Label,
		d.Period.Start.Format(time.DateOnly), d.Period.End.Format(time.DateOnly))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tShips\tTrucks\tTotal Amount")
	fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", d.Period.Label,
		d.Metrics.ShipCount, d.Metrics.TruckCount, d.Metrics.TotalAmount.StringFixed(2))
	fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", d.MonthPeriod.Label,
		d.MonthMetrics.ShipCount, d.MonthMetrics.TruckCount, d.MonthMetrics.TotalAmount.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}

	if d.Empty {
		fmt.Fprintf(w, "\nNo deliveries scheduled for %s\n", d.Period.Label)
		return nil
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(exporter.SeriesHeaders, "\t"))
	for _, record := range exporter.SeriesRecords(d.Series) {
		fmt.Fprintln(tw, strings.Join(record, "\t"))
	}
	return tw.Flush()
}
