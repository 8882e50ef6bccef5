package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/jarvis-ledger/internal/config"
	"github.com/dvloznov/jarvis-ledger/internal/domain"
	"github.com/dvloznov/jarvis-ledger/internal/ledger"
	"github.com/dvloznov/jarvis-ledger/internal/logger"
	"github.com/dvloznov/jarvis-ledger/internal/store/localfile"
	"github.com/dvloznov/jarvis-ledger/internal/store/postgres"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		runAdd(log)
	case "list":
		runList(log)
	case "delete":
		runDelete(log)
	case "clear":
		runClear(log)
	case "import":
		runImport(log)
	case "summary":
		runSummary(log)
	case "budget":
		runBudget(log)
	case "budgets":
		runBudgets(log)
	case "status":
		runStatus(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Jarvis Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  add       Record a transaction")
	fmt.Println("  list      List recorded transactions")
	fmt.Println("  delete    Delete a transaction or budget by ID")
	fmt.Println("  clear     Delete all transactions or budgets")
	fmt.Println("  import    Import transactions from a CSV file")
	fmt.Println("  summary   Summarize income and expenses over a period")
	fmt.Println("  budget    Create a budget")
	fmt.Println("  budgets   List budgets and their progress")
	fmt.Println("  status    Show backend and migration status")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// buildLedger wires the backends from the environment and loads the
// collections. The remote backend is optional; when SUPABASE_DB_URL is
// unset the ledger runs against the local file store only.
func buildLedger(ctx context.Context, log zerolog.Logger) (*ledger.Ledger, func()) {
	cfg := config.Load()
	local := localfile.New(cfg.DataDir, log)

	var remote *postgres.Store
	closeFn := func() {}
	if cfg.RemoteEnabled() {
		var err error
		remote, err = postgres.Connect(ctx, cfg.RemoteDatabaseURL, cfg.RemoteServiceKey, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to the remote store")
		}
		if err := remote.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure the remote schema")
		}
		closeFn = remote.Close
	}

	var l *ledger.Ledger
	if remote != nil {
		l = ledger.New(local, remote)
	} else {
		l = ledger.New(local, nil)
	}
	if err := l.Load(ctx); err != nil {
		closeFn()
		log.Fatal().Err(err).Msg("Failed to load the ledger")
	}
	return l, closeFn
}

func runAdd(log zerolog.Logger) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	typ := fs.String("type", "expense", "Transaction type: income, expense or transfer")
	amount := fs.String("amount", "", "Amount (required)")
	description := fs.String("description", "", "Description (required)")
	category := fs.String("category", "", "Category (expenses only)")
	date := fs.String("date", "", "Date as YYYY-MM-DD (required)")
	tags := fs.String("tags", "", "Comma-separated tags")
	fs.Parse(os.Args[2:])

	if *amount == "" || *description == "" || *date == "" {
		fs.Usage()
		os.Exit(1)
	}

	txType, err := domain.ParseTransactionType(*typ)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid transaction type")
	}
	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		log.Fatal().Err(err).Str("amount", *amount).Msg("Invalid amount")
	}

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()

	tx, err := l.AddTransaction(ctx, ledger.NewTransaction{
		Type:        txType,
		Amount:      amt,
		Description: *description,
		Category:    domain.Category(strings.ToLower(*category)),
		Date:        *date,
		Tags:        splitTags(*tags),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add transaction")
	}
	fmt.Printf("Added transaction %s\n", tx.ID)
}

func runList(log zerolog.Logger) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print transactions as JSON")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()

	txs := l.Transactions()
	if *asJSON {
		printJSON(log, txs)
		return
	}
	if len(txs) == 0 {
		fmt.Println("No transactions recorded.")
		return
	}
	for _, t := range txs {
		line := fmt.Sprintf("%s  %s  %-8s  %10s  %s", t.ID, t.Date, t.Type, t.Amount.StringFixed(2), t.Description)
		if t.Category != "" {
			line += fmt.Sprintf("  [%s]", t.Category)
		}
		fmt.Println(line)
	}
}

func runDelete(log zerolog.Logger) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "ID of the record to delete (required)")
	kind := fs.String("kind", "transaction", "Record kind: transaction or budget")
	fs.Parse(os.Args[2:])

	if *id == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()

	var err error
	switch *kind {
	case "transaction":
		err = l.DeleteTransaction(ctx, *id)
	case "budget":
		err = l.DeleteBudget(ctx, *id)
	default:
		log.Fatal().Str("kind", *kind).Msg("Unknown record kind")
	}
	if err != nil {
		log.Fatal().Err(err).Str("id", *id).Msg("Failed to delete record")
	}
	fmt.Printf("Deleted %s %s\n", *kind, *id)
}

func runClear(log zerolog.Logger) {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	kind := fs.String("kind", "transactions", "Record kind: transactions or budgets")
	confirm := fs.Bool("yes", false, "Confirm the deletion")
	fs.Parse(os.Args[2:])

	if !*confirm {
		fmt.Fprintln(os.Stderr, "Refusing to clear without -yes")
		os.Exit(1)
	}

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()

	var err error
	switch *kind {
	case "transactions":
		err = l.ClearTransactions(ctx)
	case "budgets":
		err = l.ClearBudgets(ctx)
	default:
		log.Fatal().Str("kind", *kind).Msg("Unknown record kind")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to clear records")
	}
	fmt.Printf("Cleared all %s\n", *kind)
}

func runImport(log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "Path to the CSV file (required)")
	fs.Parse(os.Args[2:])

	if *file == "" {
		fs.Usage()
		os.Exit(1)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read CSV file")
	}

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()

	res, err := l.ImportCSV(ctx, string(raw))
	if err != nil {
		log.Warn().Err(err).Msg("Import finished with a persistence failure")
	}
	fmt.Printf("Imported %d transactions\n", res.Imported)
	for _, rowErr := range res.Errors {
		fmt.Fprintf(os.Stderr, "  skipped %s\n", rowErr)
	}
}

func runSummary(log zerolog.Logger) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	start := fs.String("start", "", "Period start as YYYY-MM-DD (required)")
	end := fs.String("end", "", "Period end as YYYY-MM-DD (required)")
	fs.Parse(os.Args[2:])

	if *start == "" || *end == "" {
		fs.Usage()
		os.Exit(1)
	}

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()

	s, err := l.Summarize(*start, *end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to summarize")
	}
	fmt.Printf("Period:   %s .. %s\n", s.Period.Start, s.Period.End)
	fmt.Printf("Income:   %s\n", s.TotalIncome.StringFixed(2))
	fmt.Printf("Expenses: %s\n", s.TotalExpenses.StringFixed(2))
	fmt.Printf("Balance:  %s\n", s.Balance.StringFixed(2))

	spent, err := l.SpentByCategory(*start, *end)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to aggregate categories")
	}
	if len(spent) > 0 {
		fmt.Println("\nSpending by category:")
		for _, c := range domain.Categories() {
			if amt, ok := spent[c]; ok {
				fmt.Printf("  %-14s %10s\n", c, amt.StringFixed(2))
			}
		}
	}
}

func runBudget(log zerolog.Logger) {
	fs := flag.NewFlagSet("budget", flag.ExitOnError)
	category := fs.String("category", "", "Budget category (required)")
	limit := fs.String("limit", "", "Spending limit (required)")
	period := fs.String("period", "monthly", "Budget period: weekly, monthly or yearly")
	start := fs.String("start", "", "Window start as YYYY-MM-DD (required)")
	end := fs.String("end", "", "Window end as YYYY-MM-DD (open-ended when omitted)")
	fs.Parse(os.Args[2:])

	if *category == "" || *limit == "" || *start == "" {
		fs.Usage()
		os.Exit(1)
	}

	lim, err := decimal.NewFromString(*limit)
	if err != nil {
		log.Fatal().Err(err).Str("limit", *limit).Msg("Invalid limit")
	}

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()

	b, err := l.AddBudget(ctx, ledger.NewBudget{
		Category:  domain.Category(strings.ToLower(*category)),
		Limit:     lim,
		Period:    domain.BudgetPeriod(strings.ToLower(*period)),
		StartDate: *start,
		EndDate:   *end,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add budget")
	}
	fmt.Printf("Added budget %s\n", b.ID)
}

func runBudgets(log zerolog.Logger) {
	fs := flag.NewFlagSet("budgets", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print budget progress as JSON")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()

	progress := l.BudgetProgress()
	if *asJSON {
		printJSON(log, progress)
		return
	}
	if len(progress) == 0 {
		fmt.Println("No budgets defined.")
		return
	}
	for _, p := range progress {
		window := p.Budget.StartDate
		if p.Budget.EndDate != "" {
			window += " .. " + p.Budget.EndDate
		} else {
			window += " .."
		}
		marker := ""
		if p.Over {
			marker = "  OVER"
		}
		fmt.Printf("%s  %-14s %s  %s/%s spent%s\n",
			p.Budget.ID, p.Budget.Category, window,
			p.Spent.StringFixed(2), p.Budget.Limit.StringFixed(2), marker)
	}
}

func runStatus(log zerolog.Logger) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	cfg := config.Load()
	local := localfile.New(cfg.DataDir, log)

	backend := "local"
	if cfg.RemoteEnabled() {
		backend = "remote"
	}
	fmt.Printf("Backend:   %s\n", backend)
	fmt.Printf("Data dir:  %s\n", cfg.DataDir)
	fmt.Printf("Migrated:  %t\n", local.MigrationDone())

	ctx := logger.WithContext(context.Background(), log)
	l, closeFn := buildLedger(ctx, log)
	defer closeFn()
	fmt.Printf("Records:   %d transactions, %d budgets\n", len(l.Transactions()), len(l.Budgets()))
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func printJSON(log zerolog.Logger, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode JSON")
	}
}
