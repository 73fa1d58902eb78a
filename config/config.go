package config

import (
	"car-rental-scraper/utils"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Site      string
	StartURL  string
	Direct    bool
	HTMLFile  string
	OutputDir string
	Verbose   bool

	Headless          bool
	UserAgent         string
	LaunchRetries     int
	NavigationTimeout time.Duration

	// Condition waits. Each wait carries its own deadline.
	GridTimeout      time.Duration
	PollInterval     time.Duration
	MoreTimeout      time.Duration
	MorePollInterval time.Duration
	DismissTimeout   time.Duration
	StepTimeout      time.Duration

	// Politeness pacing, never used to wait for page state.
	NavigationInterval time.Duration
	MinDelay           time.Duration
	MaxDelay           time.Duration

	MaxLoadMore int

	PickupLocation string
	PickupCode     string
	PickupInDays   int
	RentalDays     int
	PickupTime     string

	SaveToDB   bool
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
}

func DefaultConfig() *Config {
	return &Config{
		Site:               "hertz",
		OutputDir:          ".",
		Headless:           true,
		LaunchRetries:      2,
		NavigationTimeout:  60 * time.Second,
		GridTimeout:        20 * time.Second,
		PollInterval:       250 * time.Millisecond,
		MoreTimeout:        5 * time.Second,
		MorePollInterval:   200 * time.Millisecond,
		DismissTimeout:     5 * time.Second,
		StepTimeout:        10 * time.Second,
		NavigationInterval: 3 * time.Second,
		MinDelay:           300 * time.Millisecond,
		MaxDelay:           900 * time.Millisecond,
		MaxLoadMore:        10,
		PickupLocation:     "Toronto Pearson International Airport",
		PickupCode:         "YYZ",
		PickupInDays:       30,
		RentalDays:         1,
		PickupTime:         "13:00",
		SaveToDB:           false,
		DBHost:             "localhost",
		DBPort:             5432,
		DBUser:             "postgres",
		DBPassword:         "postgres",
		DBName:             "car_rental_scraper",
		DBSSLMode:          "disable",
	}
}

// Load builds the run configuration: defaults, then .env and the process
// environment, then command-line flags. A single positional argument
// overrides the start URL.
func Load(args []string, stderr io.Writer) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		utils.Warn("Could not read .env: %v", err)
	}

	cfg := DefaultConfig()
	cfg.applyEnv()

	fs := flag.NewFlagSet("car-rental-scraper", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.Site, "site", cfg.Site, "Site to scrape: hertz, swiftride or all")
	fs.BoolVar(&cfg.Direct, "direct", cfg.Direct, "Open the results URL directly instead of filling the search form")
	fs.StringVar(&cfg.HTMLFile, "html", cfg.HTMLFile, "Scrape a saved results page instead of launching Chrome")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "Directory CSV files are written to")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every locator miss")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run Chrome headless")
	fs.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "Browser user agent (random desktop Chrome when empty)")
	fs.BoolVar(&cfg.SaveToDB, "db", cfg.SaveToDB, "Also store offers in PostgreSQL")
	fs.IntVar(&cfg.MaxLoadMore, "max-load-more", cfg.MaxLoadMore, "Maximum load-more clicks per site")
	fs.StringVar(&cfg.PickupLocation, "pickup", cfg.PickupLocation, "Pickup location typed into the search form")
	fs.StringVar(&cfg.PickupCode, "pickup-code", cfg.PickupCode, "Pickup location code used by -direct")
	fs.IntVar(&cfg.PickupInDays, "pickup-in-days", cfg.PickupInDays, "Days from today until pickup")
	fs.IntVar(&cfg.RentalDays, "rental-days", cfg.RentalDays, "Rental length in days")
	fs.StringVar(&cfg.PickupTime, "pickup-time", cfg.PickupTime, "Pickup and return time (HH:MM)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.StartURL = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one start URL, got %d arguments", fs.NArg())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Site = utils.EnvOrDefault("SCRAPER_SITE", c.Site)
	c.OutputDir = utils.EnvOrDefault("SCRAPER_OUTPUT_DIR", c.OutputDir)
	c.Headless = utils.EnvBoolOrDefault("SCRAPER_HEADLESS", c.Headless)
	c.UserAgent = utils.EnvOrDefault("SCRAPER_USER_AGENT", c.UserAgent)
	c.Verbose = utils.EnvBoolOrDefault("SCRAPER_VERBOSE", c.Verbose)
	c.LaunchRetries = utils.EnvIntOrDefault("SCRAPER_LAUNCH_RETRIES", c.LaunchRetries)
	c.NavigationTimeout = utils.EnvDurationOrDefault("SCRAPER_NAVIGATION_TIMEOUT", c.NavigationTimeout)
	c.GridTimeout = utils.EnvDurationOrDefault("SCRAPER_GRID_TIMEOUT", c.GridTimeout)
	c.PollInterval = utils.EnvDurationOrDefault("SCRAPER_POLL_INTERVAL", c.PollInterval)
	c.NavigationInterval = utils.EnvDurationOrDefault("SCRAPER_NAVIGATION_INTERVAL", c.NavigationInterval)
	c.MaxLoadMore = utils.EnvIntOrDefault("SCRAPER_MAX_LOAD_MORE", c.MaxLoadMore)
	c.PickupLocation = utils.EnvOrDefault("SCRAPER_PICKUP", c.PickupLocation)
	c.PickupCode = utils.EnvOrDefault("SCRAPER_PICKUP_CODE", c.PickupCode)

	c.SaveToDB = utils.EnvBoolOrDefault("DB_ENABLED", c.SaveToDB)
	c.DBHost = utils.EnvOrDefault("DB_HOST", c.DBHost)
	c.DBPort = utils.EnvIntOrDefault("DB_PORT", c.DBPort)
	c.DBUser = utils.EnvOrDefault("DB_USER", c.DBUser)
	c.DBPassword = utils.EnvOrDefault("DB_PASSWORD", c.DBPassword)
	c.DBName = utils.EnvOrDefault("DB_NAME", c.DBName)
	c.DBSSLMode = utils.EnvOrDefault("DB_SSLMODE", c.DBSSLMode)
}

func (c *Config) Validate() error {
	switch c.Site {
	case "hertz", "swiftride", "all":
	default:
		return fmt.Errorf("unknown site %q", c.Site)
	}
	if c.Site == "all" && c.StartURL != "" {
		return errors.New("a start URL needs a single -site")
	}
	if c.PollInterval <= 0 || c.MorePollInterval <= 0 {
		return errors.New("poll intervals must be positive")
	}
	if c.RentalDays < 1 {
		return errors.New("rental days must be at least 1")
	}
	if c.MaxDelay < c.MinDelay {
		return errors.New("max delay is shorter than min delay")
	}
	if _, err := time.Parse("15:04", c.PickupTime); err != nil {
		return fmt.Errorf("pickup time %q: %w", c.PickupTime, err)
	}
	return nil
}

// PickupDate and ReturnDate are relative to now, in local time.
func (c *Config) PickupDate(now time.Time) time.Time {
	return now.AddDate(0, 0, c.PickupInDays)
}

func (c *Config) ReturnDate(now time.Time) time.Time {
	return c.PickupDate(now).AddDate(0, 0, c.RentalDays)
}

// DSN builds the PostgreSQL connection URL. Credentials are escaped, so
// they may hold '@', '/' or ':'.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}
