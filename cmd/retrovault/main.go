// retrovault tracks a personal video-game collection and estimates what
// it's worth from recent market sales.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retrovault/retrovault/internal/cache"
	"github.com/retrovault/retrovault/internal/collection"
	"github.com/retrovault/retrovault/internal/comps"
	"github.com/retrovault/retrovault/internal/config"
	"github.com/retrovault/retrovault/internal/history"
	"github.com/retrovault/retrovault/internal/model"
	"github.com/retrovault/retrovault/internal/refresh"
	"github.com/retrovault/retrovault/internal/report"
	"github.com/retrovault/retrovault/internal/valuation"
)

const usage = `usage: retrovault <command> [flags]

commands:
  value       estimate the value of a described item
  add         record a purchase in the collection
  list        show the collection with latest estimates
  remove      delete an item from the collection
  report      export the valued collection as CSV
  refresh     revalue the whole collection now (or on a schedule with -watch)
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	app, err := newApp(cfg)
	if err != nil {
		log.Fatalf("retrovault: %v", err)
	}

	var cmdErr error
	switch os.Args[1] {
	case "value":
		cmdErr = app.cmdValue(os.Args[2:])
	case "add":
		cmdErr = app.cmdAdd(os.Args[2:])
	case "list":
		cmdErr = app.cmdList(os.Args[2:])
	case "remove":
		cmdErr = app.cmdRemove(os.Args[2:])
	case "report":
		cmdErr = app.cmdReport(os.Args[2:])
	case "refresh":
		cmdErr = app.cmdRefresh(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if cmdErr != nil {
		log.Fatalf("retrovault %s: %v", os.Args[1], cmdErr)
	}
}

type app struct {
	cfg      config.Config
	provider comps.Provider
	engine   *valuation.Engine
	store    *collection.Store
	tracker  *history.Tracker
}

func newApp(cfg config.Config) (*app, error) {
	c, err := cache.Open(cfg.CachePath())
	if err != nil {
		return nil, err
	}
	store, err := collection.Open(cfg.CollectionPath())
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		provider: comps.NewProvider(cfg.Comps(), c),
		engine:   valuation.New(valuation.DefaultConfig()),
		store:    store,
		tracker:  history.Open(cfg.HistoryPath()),
	}, nil
}

func targetFlags(fs *flag.FlagSet) *model.TargetItem {
	t := &model.TargetItem{Category: "video-games"}
	fs.StringVar(&t.Name, "name", "", "game title (required)")
	fs.StringVar(&t.Platform, "platform", "", "platform, e.g. NES")
	fs.StringVar(&t.Region, "region", "", "region, e.g. NTSC")
	fs.StringVar((*string)(&t.Condition), "condition", "", "sealed, complete, or loose")
	fs.StringVar(&t.GradingAuthority, "authority", "", "grading authority, e.g. WATA")
	fs.Float64Var(&t.GradeValue, "grade", 0, "numeric grade, e.g. 9.4")
	return t
}

func (a *app) cmdValue(args []string) error {
	fs := flag.NewFlagSet("value", flag.ExitOnError)
	target := targetFlags(fs)
	fs.Parse(args)

	if target.Name == "" {
		return fmt.Errorf("-name is required")
	}

	records, err := a.provider.Search(context.Background(), comps.Query{
		Name:             target.Name,
		Platform:         target.Platform,
		Region:           target.Region,
		Condition:        target.Condition,
		GradingAuthority: target.GradingAuthority,
		GradeValue:       target.GradeValue,
	})
	if err != nil {
		return fmt.Errorf("fetching comparables from %s: %w", a.provider.Name(), err)
	}

	printResult(*target, a.engine.Value(*target, records, time.Now()))
	return nil
}

func (a *app) cmdAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	target := targetFlags(fs)
	paid := fs.Float64("paid", 0, "purchase price")
	when := fs.String("date", "", "purchase date, YYYY-MM-DD (default today)")
	notes := fs.String("notes", "", "free-form notes")
	fs.Parse(args)

	purchasedAt := time.Now()
	if *when != "" {
		var err error
		purchasedAt, err = time.Parse(time.DateOnly, *when)
		if err != nil {
			return fmt.Errorf("parsing -date: %w", err)
		}
	}

	item, err := a.store.Add(*target, *paid, purchasedAt, *notes)
	if err != nil {
		return err
	}
	fmt.Printf("added %s (%s)\n", item.Target.Name, item.ID)
	return nil
}

func (a *app) cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(args)

	items := a.store.List()
	if len(items) == 0 {
		fmt.Println("collection is empty")
		return nil
	}

	for _, item := range items {
		line := fmt.Sprintf("%s  %-30s", item.ID[:8], item.Target.Name)
		if snap, ok := a.tracker.Latest(item.ID); ok {
			line += fmt.Sprintf("  paid %.2f  est %d (%s)", item.PurchasePrice, snap.Estimate, snap.Tier)
		} else {
			line += fmt.Sprintf("  paid %.2f  est n/a", item.PurchasePrice)
		}
		fmt.Println(line)
	}
	return nil
}

func (a *app) cmdRemove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	id := fs.String("id", "", "item id")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	if err := a.store.Remove(*id); err != nil {
		return err
	}
	fmt.Println("removed", *id)
	return nil
}

func (a *app) cmdReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	out := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args)

	ctx := context.Background()
	now := time.Now()

	var rows []report.Row
	for _, item := range a.store.List() {
		records, err := a.provider.Search(ctx, refresh.QueryFor(item))
		var res model.ValuationResult
		if err != nil {
			log.Printf("report: %s: %v", item.Target.Name, err)
			res = model.ValuationResult{
				Empty:       true,
				EmptyReason: "provider error",
				Tier:        model.ConfidenceLow,
				Methodology: "No estimate: provider error.",
			}
		} else {
			res = a.engine.Value(item.Target, records, now)
			a.tracker.Record(item.ID, res, now)
		}
		rows = append(rows, report.Row{
			Item:       item,
			Result:     res,
			Volatility: a.tracker.Volatility(item.ID, 30*24*time.Hour, now),
		})
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}
	return report.WriteCSV(w, rows)
}

func (a *app) cmdRefresh(args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	watch := fs.Bool("watch", false, "keep running and refresh on the configured cron schedule")
	fs.Parse(args)

	svc := refresh.New(a.provider, a.engine, a.store, a.tracker, a.cfg.RatePerSec)

	if _, err := svc.Run(context.Background()); err != nil {
		return err
	}
	if !*watch {
		return nil
	}

	sched, err := refresh.NewScheduler(svc, a.cfg.RefreshSpec)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()
	log.Printf("watching: refresh scheduled at %q", a.cfg.RefreshSpec)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	return nil
}

func printResult(target model.TargetItem, res model.ValuationResult) {
	if res.Empty {
		fmt.Printf("%s: no estimate (%s)\n", target.Name, res.EmptyReason)
		return
	}

	fmt.Printf("%s\n", target.Name)
	fmt.Printf("  estimate:    %d\n", res.PointEstimate)
	fmt.Printf("  range:       %.0f / %.0f / %.0f (25th/50th/75th)\n", res.Range.Low, res.Range.Median, res.Range.High)
	fmt.Printf("  confidence:  %s (%d/100)\n", res.Tier, res.ConfidenceScore)
	if res.Rolling.Days30 != nil {
		fmt.Printf("  30d average: %.2f\n", *res.Rolling.Days30)
	}
	if res.Rolling.Days90 != nil {
		fmt.Printf("  90d average: %.2f\n", *res.Rolling.Days90)
	}
	if res.Rolling.Days180 != nil {
		fmt.Printf("  180d average: %.2f\n", *res.Rolling.Days180)
	}
	for _, adj := range res.Adjustments {
		fmt.Printf("  adjustment:  %s x%.2f (%s)\n", adj.Kind, adj.Multiplier, adj.Rationale)
	}
	fmt.Printf("  method:      %s\n", res.Methodology)
}
