package main

import (
	"car-rental-scraper/browser"
	"car-rental-scraper/config"
	"car-rental-scraper/models"
	"car-rental-scraper/scraper"
	"car-rental-scraper/scraper/hertz"
	"car-rental-scraper/scraper/swiftride"
	"car-rental-scraper/services"
	"car-rental-scraper/storage"
	"car-rental-scraper/utils"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

func main() {
	os.Exit(run())
}

// run owns every resource so deferred cleanup happens before the exit code
// is handed to os.Exit.
func run() int {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		utils.Error("Invalid configuration: %v", err)
		return 2
	}
	utils.SetVerbose(cfg.Verbose)
	defer utils.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	utils.Info("Scraper starting | site=%s direct=%v headless=%v out=%s",
		cfg.Site, cfg.Direct, cfg.Headless, cfg.OutputDir)

	sites := selectSites(cfg, time.Now())

	session, err := openSession(cfg)
	if err != nil {
		utils.Error("Could not start browser: %v", err)
		return 1
	}
	defer session.Close()

	runner := scraper.NewRunner(session, runnerOptions(cfg))

	status := 0
	var offers []models.Offer

	for _, site := range sites {
		result, err := runner.Run(ctx, site)
		if err != nil {
			utils.Error("Scrape of %s failed: %v", site.Name, err)
			status = 1
			if len(result.Records) == 0 && len(result.CrawlRecords) == 0 {
				continue
			}
		}

		if err := writeCSV(cfg, site.Output, site.Columns, result.Records); err != nil {
			utils.Error("Failed to save %s: %v", site.Output, err)
			status = 1
		}
		if site.CrawlOutput != "" && len(result.CrawlRecords) > 0 {
			if err := writeCSV(cfg, site.CrawlOutput, scraper.CrawlColumns, result.CrawlRecords); err != nil {
				utils.Error("Failed to save %s: %v", site.CrawlOutput, err)
				status = 1
			}
		}

		printSummary(result)
		offers = append(offers, site.Offers(result.Records)...)
	}

	if cfg.SaveToDB && len(offers) > 0 {
		if err := saveToDB(ctx, cfg, offers); err != nil {
			utils.Error("Failed to save offers to PostgreSQL: %v", err)
			status = 1
		}
	}

	services.PrintReport(os.Stdout, services.GenerateReport(offers))
	return status
}

func selectSites(cfg *config.Config, now time.Time) []*scraper.Site {
	switch cfg.Site {
	case "hertz":
		return []*scraper.Site{hertz.Site(cfg, now)}
	case "swiftride":
		return []*scraper.Site{swiftride.Site("")}
	default:
		return []*scraper.Site{hertz.Site(cfg, now), swiftride.Site("")}
	}
}

func openSession(cfg *config.Config) (browser.Session, error) {
	if cfg.HTMLFile != "" {
		utils.Info("Reading saved page %s", cfg.HTMLFile)
		return browser.NewStaticSessionFromFile(cfg.HTMLFile)
	}

	var session *browser.ChromeSession
	err := utils.Retry(cfg.LaunchRetries, 2*time.Second, func() error {
		var err error
		session, err = browser.NewChromeSession(browser.ChromeOptions{
			Headless:          cfg.Headless,
			UserAgent:         cfg.UserAgent,
			NavigationTimeout: cfg.NavigationTimeout,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func runnerOptions(cfg *config.Config) scraper.Options {
	return scraper.Options{
		Timing: scraper.Timing{
			GridTimeout:      cfg.GridTimeout,
			PollInterval:     cfg.PollInterval,
			MoreTimeout:      cfg.MoreTimeout,
			MorePollInterval: cfg.MorePollInterval,
			DismissTimeout:   cfg.DismissTimeout,
			StepTimeout:      cfg.StepTimeout,
			MinDelay:         cfg.MinDelay,
			MaxDelay:         cfg.MaxDelay,
		},
		NavigationInterval: cfg.NavigationInterval,
		MaxLoadMore:        cfg.MaxLoadMore,
		Direct:             cfg.Direct,
		StartURL:           cfg.StartURL,
		Offline:            cfg.HTMLFile != "",
	}
}

func writeCSV(cfg *config.Config, name string, columns []string, records []models.Record) error {
	path := filepath.Join(cfg.OutputDir, name)
	return storage.NewCSVWriter(path, columns).Write(records)
}

func saveToDB(ctx context.Context, cfg *config.Config, offers []models.Offer) error {
	pg, err := storage.NewPostgresWriter(ctx, cfg.DSN(), 3)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}

	inserted, err := pg.WriteBatch(ctx, offers)
	if err != nil {
		return err
	}
	utils.Success("Saved %d new offers to PostgreSQL (%d already stored)", inserted, len(offers)-inserted)
	return nil
}

func printSummary(result models.ScrapeResult) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════╗")
	fmt.Printf("║  %-44s║\n", "SCRAPE COMPLETE: "+result.Site)
	fmt.Println("╠══════════════════════════════════════════════╣")
	fmt.Printf("║  Offers kept    : %-27d║\n", len(result.Records))
	fmt.Printf("║  Cards read     : %-27d║\n", result.CardsSeen)
	fmt.Printf("║  Cards failed   : %-27d║\n", result.Failed)
	fmt.Printf("║  Cards dropped  : %-27d║\n", result.Dropped)
	fmt.Printf("║  Crawl rows     : %-27d║\n", len(result.CrawlRecords))
	fmt.Println("╚══════════════════════════════════════════════╝")
	fmt.Println()
}
