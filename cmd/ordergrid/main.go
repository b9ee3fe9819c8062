package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordergrid/ordergrid/internal/catalog"
	"github.com/ordergrid/ordergrid/internal/grid"
	"github.com/ordergrid/ordergrid/internal/order"
)

const version = "0.4.1"

func main() {
	// No arguments or only flags -> launch the order-entry grid
	if len(os.Args) < 2 || strings.HasPrefix(os.Args[1], "--") {
		if err := runGrid(os.Args[1:]); err != nil {
			fmt.Printf("%sError: %s%s\n", catalog.Red, err, catalog.Reset)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cmd := os.Args[1]

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printUsage()
		os.Exit(0)
	}

	if cmd == "version" || cmd == "-v" || cmd == "--version" {
		fmt.Printf("OrderGrid v%s\n", version)
		os.Exit(0)
	}

	config, err := catalog.LoadConfig()
	if err != nil {
		fmt.Printf("%sError: %s%s\n", catalog.Red, err, catalog.Reset)
		os.Exit(1)
	}
	client := catalog.NewClient(config)

	var cmdErr error
	switch cmd {
	case "ping":
		cmdErr = cmdPing(client)
	case "config":
		cmdErr = cmdConfig(config)
	case "import":
		cmdErr = cmdImport(client, os.Args[2:])
	default:
		fmt.Printf("%sUnknown command: %s%s\n", catalog.Red, cmd, catalog.Reset)
		printUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		fmt.Printf("%sError: %s%s\n", catalog.Red, cmdErr, catalog.Reset)
		os.Exit(1)
	}
}

// headerFromFlags builds the order header the grid starts with.
func headerFromFlags(args []string) (order.Header, error) {
	h := order.Header{
		Type:         order.DocumentSale,
		Book:         "A",
		ExchangeRate: decimal.NewFromInt(1),
		Date:         time.Now().Format("2006-01-02"),
	}

	for _, arg := range args {
		switch {
		case arg == "--purchase":
			h.Type = order.DocumentPurchase
		case strings.HasPrefix(arg, "--book="):
			h.Book = strings.TrimPrefix(arg, "--book=")
		case strings.HasPrefix(arg, "--number="):
			h.DocumentNumber = strings.TrimPrefix(arg, "--number=")
		case strings.HasPrefix(arg, "--party="):
			id, err := strconv.ParseInt(strings.TrimPrefix(arg, "--party="), 10, 64)
			if err != nil {
				return h, fmt.Errorf("invalid --party: %w", err)
			}
			h.PartyID = id
		case strings.HasPrefix(arg, "--currency="):
			id, err := strconv.ParseInt(strings.TrimPrefix(arg, "--currency="), 10, 64)
			if err != nil {
				return h, fmt.Errorf("invalid --currency: %w", err)
			}
			h.CurrencyID = id
		case strings.HasPrefix(arg, "--rate="):
			rate, err := decimal.NewFromString(strings.TrimPrefix(arg, "--rate="))
			if err != nil {
				return h, fmt.Errorf("invalid --rate: %w", err)
			}
			h.ExchangeRate = rate
		}
	}
	return h, nil
}

func runGrid(args []string) error {
	config, err := catalog.LoadConfig()
	if err != nil {
		return err
	}
	client := catalog.NewClient(config)

	header, err := headerFromFlags(args)
	if err != nil {
		return err
	}

	return grid.Run(client, config.Brand, config.PriceCategory, header, order.NewStore())
}

func cmdPing(client *catalog.Client) error {
	fmt.Printf("%sTesting connection to the order backend...%s\n", catalog.Blue, catalog.Reset)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return err
	}

	fmt.Printf("%s✓ Connection successful%s\n", catalog.Green, catalog.Reset)
	fmt.Printf("  Backend: %s\n", client.Config.APIURL)
	return nil
}

func cmdConfig(config *catalog.Config) error {
	fmt.Printf("%sCurrent configuration:%s\n", catalog.Blue, catalog.Reset)
	fmt.Printf("  Backend URL: %s\n", config.APIURL)
	if config.APIKey != "" {
		fmt.Printf("  API Key: configured\n")
	} else {
		fmt.Printf("  API Key: %snot configured%s\n", catalog.Yellow, catalog.Reset)
	}
	fmt.Printf("  Price category: %d\n", config.PriceCategory)
	fmt.Printf("  Brand: %s\n", config.Brand)
	return nil
}

func cmdImport(client *catalog.Client, args []string) error {
	inputFile := ""
	dryRun := false
	for i, arg := range args {
		if arg == "-f" && i+1 < len(args) {
			inputFile = args[i+1]
		}
		if arg == "--dry-run" {
			dryRun = true
		}
	}
	if inputFile == "" {
		return fmt.Errorf("input file required. Use -f <file>")
	}

	header, err := headerFromFlags(args)
	if err != nil {
		return err
	}

	file, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows, err := order.ReadExternalCSV(file)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("%s[DRY RUN] Importing lines from: %s%s\n", catalog.Yellow, inputFile, catalog.Reset)
	} else {
		fmt.Printf("%sImporting lines from: %s%s\n", catalog.Blue, inputFile, catalog.Reset)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store := order.NewStore()
	report := order.Reconcile(ctx, store, client.Source(), rows, order.Append)

	for _, fail := range report.Failed {
		fmt.Printf("  %s✗ Line %d (%s): %s%s\n", catalog.Red, fail.Position, fail.ItemCode, fail.Reason, catalog.Reset)
	}
	for _, line := range store.ResolvedLines() {
		fmt.Printf("  %s✓ %s: %s x %s = %s%s\n", catalog.Green,
			line.ItemCode, line.Quantity, line.UnitPrice, line.LineAmount, catalog.Reset)
	}
	fmt.Printf("\n%sSummary: %d applied, %d failed%s\n", catalog.Cyan, report.Applied, len(report.Failed), catalog.Reset)

	if dryRun || report.Applied == 0 {
		return nil
	}

	if header.DocumentNumber == "" {
		gen, err := client.GenerateNumber(ctx, header.Book, header.Type)
		if err != nil {
			return fmt.Errorf("number generation failed: %w", err)
		}
		header.DocumentNumber = gen.OrderNumber
		header.AutoNumbering = gen.AutoNumbering
	}

	if err := order.ValidateOrder(header, store.Snapshot()); err != nil {
		return fmt.Errorf("order is not saveable: %w", err)
	}

	saved, err := client.SaveOrder(ctx, header, store.ResolvedLines())
	if err != nil {
		return err
	}
	fmt.Printf("%s✓ Order saved: %s%s\n", catalog.Green, saved.DocumentNumber, catalog.Reset)
	return nil
}

func printUsage() {
	fmt.Printf(`%sOrderGrid%s - spreadsheet-style order entry for the terminal

Usage: ordergrid [flags]           Launch the order-entry grid
       ordergrid <command> [args]

%sGrid flags:%s
  %s--purchase%s                 Edit a purchase order (default: sale)
  %s--book=<letter>%s            Document book for number generation
  %s--number=<doc no>%s          Explicit document number
  %s--party=<id>%s               Customer or supplier id
  %s--currency=<id> --rate=<x>%s Currency and exchange rate

%sCommands:%s
  %sping%s                       Test backend connection
  %sconfig%s                     Show current configuration
  %sversion%s                    Show version information
  %simport -f <file> [--dry-run]%s
                             Reconcile a CSV of lines into a new order
                             (columns: item_code,quantity,bonus,price,discount,batch)

%sGrid keys:%s
  tab/enter  commit cell and advance        f3   resolve typed item code
  shift+tab  back one cell                  f9   pick storage location
  up/down    move between rows              f8   pick unit variant
  ctrl+d     delete row                     f6   header discount/tax/shipping
  ctrl+s     save order                     esc  quit

`,
		catalog.Blue, catalog.Reset,
		catalog.Yellow, catalog.Reset,
		catalog.Green, catalog.Reset, catalog.Green, catalog.Reset, catalog.Green, catalog.Reset,
		catalog.Green, catalog.Reset, catalog.Green, catalog.Reset,
		catalog.Yellow, catalog.Reset,
		catalog.Green, catalog.Reset, catalog.Green, catalog.Reset, catalog.Green, catalog.Reset,
		catalog.Green, catalog.Reset,
		catalog.Yellow, catalog.Reset,
	)
}
