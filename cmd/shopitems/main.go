package main

import (
	"bufio"
	"context"
	"database/sql"
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

	"github.com/erazemk/shopitems/internal/db"
	"github.com/erazemk/shopitems/internal/model"
	"github.com/erazemk/shopitems/internal/store"
)

const usage = `Usage: shopitems [flags] [command] [command flags]

Commands:
  add      add an item, prompting for any field not given as a flag (default)
           -name, -amount, -price, -best-before, -entered, -type
  list     list items of a type: list -type <type> or list <type>
  total    print the total price of all items

Flags:
  -d, -db <path>    SQLite database path (default: shop_items.db)
  -l, -log <path>   log file path (default: no file, stdout/stderr only)
  -q, -quiet        only log warnings and errors
  -h, -help         show this help and exit
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("shopitems", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var dbPath string
	fs.StringVar(&dbPath, "db", db.DefaultPath, "")
	fs.StringVar(&dbPath, "d", db.DefaultPath, "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var quiet bool
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&quiet, "q", false, "")

	fs.Usage = func() { fmt.Fprint(stdout, usage) }

	if err := fs.Parse(args); err != nil {
		return err
	}

	closeLog, err := setupLogger(stdout, stderr, logPath, quiet)
	if err != nil {
		return err
	}
	defer closeLog()

	command, rest := "add", fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", dbPath)

	ctx := context.Background()
	switch command {
	case "add":
		return cmdAdd(ctx, database, rest, stdin, stdout, stderr)
	case "list":
		return cmdList(ctx, database, rest, stdout, stderr)
	case "total":
		return printTotal(ctx, database, stdout)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func cmdAdd(ctx context.Context, database *sql.DB, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var in model.Input
	fs.StringVar(&in.Name, "name", "", "item name")
	fs.StringVar(&in.Amount, "amount", "", "amount in stock")
	fs.StringVar(&in.Price, "price", "", "price, e.g. 1.50")
	fs.StringVar(&in.BestBefore, "best-before", "", "best before date (YYYY-MM-DD)")
	fs.StringVar(&in.DateEntered, "entered", "", "date entered (YYYY-MM-DD HH:MM:SS)")
	fs.StringVar(&in.ItemType, "type", "", "item type, e.g. food")
	if err := fs.Parse(args); err != nil {
		return err
	}

	given := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })

	p := &prompter{r: bufio.NewReader(stdin), w: stdout}
	fields := []struct {
		flag   string
		prompt string
		dst    *string
	}{
		{"name", "Enter item name: ", &in.Name},
		{"amount", "Enter amount: ", &in.Amount},
		{"price", "Enter price: ", &in.Price},
		{"best-before", "Enter best before date (YYYY-MM-DD, blank if none): ", &in.BestBefore},
		{"entered", "Enter date entered (YYYY-MM-DD HH:MM:SS, blank for now): ", &in.DateEntered},
		{"type", "Enter item type: ", &in.ItemType},
	}
	for _, f := range fields {
		if given[f.flag] {
			continue
		}
		v, err := p.ask(f.prompt)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.flag, err)
		}
		if f.flag == "entered" && v == "" {
			v = time.Now().Format(model.DateTimeFormat)
		}
		*f.dst = v
	}

	item, err := store.Logged(ctx, "add_item", func(ctx context.Context) (*model.Item, error) {
		item, err := model.Normalize(in)
		if err != nil {
			return nil, err
		}
		return store.CreateItem(ctx, database, item)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Added item %d.\n", item.ID)

	if err := printItems(ctx, database, item.ItemType, stdout); err != nil {
		return err
	}
	return printTotal(ctx, database, stdout)
}

func cmdList(ctx context.Context, database *sql.DB, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	itemType := fs.String("type", "", "item type to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *itemType == "" && fs.NArg() > 0 {
		*itemType = fs.Arg(0)
	}
	if *itemType == "" {
		return fmt.Errorf("list: item type is required")
	}

	return printItems(ctx, database, *itemType, stdout)
}

func printItems(ctx context.Context, database *sql.DB, itemType string, stdout io.Writer) error {
	items, err := store.Logged(ctx, "get_items_by_type", func(ctx context.Context) ([]model.Item, error) {
		return store.ListItemsByType(ctx, database, itemType)
	})
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Fprintf(stdout, "No items of type %q.\n", itemType)
		return nil
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAMOUNT\tPRICE\tBEST BEFORE\tDATE ENTERED\tTYPE")
	for _, it := range items {
		bestBefore := "-"
		if it.BestBefore != nil {
			bestBefore = it.BestBefore.Format(model.DateFormat)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\n",
			it.ID, it.Name, it.Amount, formatPrice(it.Price), bestBefore,
			it.DateEntered.Format(model.DateTimeFormat), it.ItemType)
	}
	return tw.Flush()
}

func printTotal(ctx context.Context, database *sql.DB, stdout io.Writer) error {
	total, err := store.Logged(ctx, "calculate_total_price", func(ctx context.Context) (float64, error) {
		return store.TotalPrice(ctx, database)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Total price of all items: %s\n", formatPrice(total))
	return nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// prompter reads one answer per line.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.w, prompt)
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
