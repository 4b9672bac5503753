package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/simaogato/wealthtrack-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/wealthtrack-backend/internal/app"
	"github.com/simaogato/wealthtrack-backend/internal/config"
	"github.com/simaogato/wealthtrack-backend/internal/domain"
)

// as a CLI application, it has a very short lived lifecycle, so every command
// opens and closes the whole application.
func openApp() (*app.App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg)
}

func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// migrateCmd applies pending database migrations.
type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string {
	return `wealthctl migrate

  Applies every pending migration to the database named by DB_CONN_STR or DB_*.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := config.Load()
	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		return fail("%v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		return fail("%v", err)
	}
	fmt.Println("Migrations applied")
	return subcommands.ExitSuccess
}

// useraddCmd registers a user.
type useraddCmd struct {
	username string
	password string
}

func (*useraddCmd) Name() string     { return "useradd" }
func (*useraddCmd) Synopsis() string { return "register a user" }
func (*useraddCmd) Usage() string {
	return `wealthctl useradd -u <username> -p <password>
`
}

func (c *useraddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "u", "", "username")
	f.StringVar(&c.password, "p", "", "password (at least 8 characters)")
}

func (c *useraddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.username == "" || c.password == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	u, err := a.Services.Users.Register(ctx, c.username, c.password)
	if err != nil {
		return fail("%v", err)
	}
	fmt.Printf("Created user %s (%s)\n", u.Username, u.ID)
	return subcommands.ExitSuccess
}

// refreshCmd revalues every stock account now.
type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "revalue every user's stock accounts" }
func (*refreshCmd) Usage() string {
	return `wealthctl refresh

  Runs a manual refresh over all users, ledgered as manual-refresh.
`
}
func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()

	result, err := a.Services.Refresh.RefreshAll(ctx)
	if err != nil {
		return fail("%v", err)
	}
	fmt.Printf("Scanned %d, updated %d, skipped %d\n", result.Scanned, result.Updated, result.Skipped)
	return subcommands.ExitSuccess
}

// snapshotCmd records the monthly total.
type snapshotCmd struct {
	month string
	total string
	list  bool
}

func (*snapshotCmd) Name() string     { return "snapshot" }
func (*snapshotCmd) Synopsis() string { return "record or list monthly net worth snapshots" }
func (*snapshotCmd) Usage() string {
	return `wealthctl snapshot [-month YYYY-MM -total <amount>] [-list]

  Without flags, sums every account into the current month's snapshot.
  With -month and -total, stores a manually supplied total.
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "month", "", "month to record (YYYY-MM)")
	f.StringVar(&c.total, "total", "", "total market value for -month")
	f.BoolVar(&c.list, "list", false, "list stored snapshots")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if (c.month == "") != (c.total == "") {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()
	currency := a.Config.LocalCurrency

	if c.list {
		snaps, err := a.Services.Snapshots.ListSnapshots(ctx)
		if err != nil {
			return fail("%v", err)
		}
		for _, snap := range snaps {
			fmt.Printf("%s  %s\n", snap.Month.Format("2006-01"), domain.FormatMoney(snap.TotalMarketValue, currency))
		}
		return subcommands.ExitSuccess
	}

	var snap *domain.MonthlySnapshot
	if c.month != "" {
		month, err := time.Parse("2006-01", c.month)
		if err != nil {
			return fail("invalid month %q: %v", c.month, err)
		}
		total, err := decimal.NewFromString(c.total)
		if err != nil {
			return fail("invalid total %q: %v", c.total, err)
		}
		snap, err = a.Services.Snapshots.RecordSnapshot(ctx, month, total)
		if err != nil {
			return fail("%v", err)
		}
	} else {
		snap, err = a.Services.Snapshots.SnapshotMonthlyTotal(ctx, time.Now().UTC())
		if err != nil {
			return fail("%v", err)
		}
	}
	fmt.Printf("Snapshot %s: %s\n", snap.Month.Format("2006-01"), domain.FormatMoney(snap.TotalMarketValue, currency))
	return subcommands.ExitSuccess
}

// totalsCmd prints a user's market value per account type.
type totalsCmd struct{}

func (*totalsCmd) Name() string     { return "totals" }
func (*totalsCmd) Synopsis() string { return "print a user's totals per account type" }
func (*totalsCmd) Usage() string {
	return `wealthctl totals <username>
`
}
func (*totalsCmd) SetFlags(*flag.FlagSet) {}

func (c *totalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail("%v", err)
	}
	defer a.Close()
	currency := a.Config.LocalCurrency

	u, err := a.Store.Users().GetByUsername(ctx, f.Arg(0))
	if err != nil {
		return fail("%v", err)
	}
	totals, err := a.Services.Dashboard.GetTypeTotals(ctx, u.ID)
	if err != nil {
		return fail("%v", err)
	}
	worth, err := a.Services.Dashboard.GetNetWorth(ctx, u.ID)
	if err != nil {
		return fail("%v", err)
	}

	fmt.Print(formatTotals(totals, worth.Total, currency))
	return subcommands.ExitSuccess
}

// formatTotals renders one line per account type, sorted, then the total
func formatTotals(totals map[domain.AccountType]decimal.Decimal, total decimal.Decimal, currency string) string {
	types := make([]string, 0, len(totals))
	width := len("Total")
	for t := range totals {
		types = append(types, string(t))
		width = max(width, len(t))
	}
	slices.Sort(types)

	var b strings.Builder
	for _, t := range types {
		fmt.Fprintf(&b, "%-*s  %s\n", width, t, domain.FormatMoney(totals[domain.AccountType(t)], currency))
	}
	fmt.Fprintf(&b, "%-*s  %s\n", width, "Total", domain.FormatMoney(total, currency))
	return b.String()
}
