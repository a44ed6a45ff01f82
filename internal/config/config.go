package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	VeraCore VeraCoreConfig
	Reports  ReportsConfig
	Putaway  PutawayConfig
	Output   OutputConfig
	S3       S3Config
	Sheets   SheetsConfig
	MongoDB  MongoDBConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// VeraCoreConfig contains credentials and options for the VeraCore Public API.
type VeraCoreConfig struct {
	BaseURL  string
	Username string
	Password string
	SystemID string
	// Token is an optional pre-issued bearer token. When set, a run tries it
	// first and falls back to a fresh login if the backend reports it invalid.
	Token   string
	Timeout time.Duration
}

// ReportsConfig names the on-demand reports and bounds the polling protocol.
type ReportsConfig struct {
	LocationsReport string
	UnitsReport     string
	PollAttempts    int
	PollInterval    time.Duration
}

// PutawayConfig tunes the slotting and movement behavior.
type PutawayConfig struct {
	// Zones is the allow-list of zones eligible for general storage.
	Zones []string
	// AllowEmptyInUse relaxes availability to include INUSE locations whose
	// aggregate on-hand quantity is zero.
	AllowEmptyInUse bool
	// OwnerZones restricts specific product owners to a subset of zones
	// (regulated goods: alcohol owners stay in the West zone).
	OwnerZones map[string][]string
	// MoveDelay is the minimum spacing between consecutive backend move calls.
	MoveDelay time.Duration
	// RefreshAfterEachMove updates the occupancy index after every successful
	// move. Off by default: the batch deliberately works from the snapshot
	// taken at run start.
	RefreshAfterEachMove bool
	// CronSchedule drives unattended runs in cmd/server.
	CronSchedule string
}

// OutputConfig locates local CSV artifacts.
type OutputConfig struct {
	Folder string
}

// S3Config holds settings for the report archive bucket. An empty Bucket
// disables the S3 exporter.
type S3Config struct {
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// SheetsConfig contains configuration required to export the placement report
// to Google Sheets. An empty SpreadsheetID disables the exporter.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	SheetRange      string
}

// MongoDBConfig holds settings for the audit store. An empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		VeraCore: VeraCoreConfig{
			BaseURL:  getenvWithDefault("VERACORE_BASE_URL", "https://wms.3plwinner.com/VeraCore/Public.Api"),
			Username: os.Getenv("VERACORE_USERNAME"),
			Password: os.Getenv("VERACORE_PASSWORD"),
			SystemID: os.Getenv("VERACORE_SYSTEM_ID"),
			Token:    os.Getenv("VERACORE_TOKEN"),
			Timeout:  getenvDuration("VERACORE_TIMEOUT_SECONDS", 30*time.Second),
		},
		Reports: ReportsConfig{
			LocationsReport: getenvWithDefault("LOCATIONS_REPORT_NAME", "west-locations"),
			UnitsReport:     getenvWithDefault("UNITS_REPORT_NAME", "unit-details-ALL"),
			PollAttempts:    getenvInt("REPORT_POLL_ATTEMPTS", 20),
			PollInterval:    getenvDuration("REPORT_POLL_INTERVAL_SECONDS", 2*time.Second),
		},
		Putaway: PutawayConfig{
			Zones:                splitList(getenvWithDefault("PUTAWAY_ZONES", "Racks")),
			AllowEmptyInUse:      getenvBool("PUTAWAY_ALLOW_EMPTY_INUSE", false),
			OwnerZones:           parseOwnerZones(os.Getenv("PUTAWAY_OWNER_ZONES")),
			MoveDelay:            time.Duration(getenvInt("PUTAWAY_MOVE_DELAY_MS", 500)) * time.Millisecond,
			RefreshAfterEachMove: getenvBool("PUTAWAY_REFRESH_AFTER_MOVE", false),
			CronSchedule:         getenvWithDefault("PUTAWAY_CRON_SCHEDULE", "0 6 * * *"),
		},
		Output: OutputConfig{
			Folder: getenvWithDefault("OUTPUT_FOLDER", "csvs"),
		},
		S3: S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			AccessKey: os.Getenv("S3_ACCESS"),
			SecretKey: os.Getenv("S3_SECRET"),
			Region:    getenvWithDefault("AWS_REGION", "us-east-1"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("PLACEMENT_SPREADSHEET_ID"),
			SheetRange:      getenvWithDefault("PLACEMENT_SHEET_RANGE", "Placements!A:F"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "putaway"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.VeraCore.BaseURL == "" {
		return errors.New("VERACORE_BASE_URL must not be empty")
	}

	// A pre-issued token is enough to start; without one the login triple is
	// required so the run can mint its own.
	if c.VeraCore.Token == "" {
		switch {
		case c.VeraCore.Username == "":
			return errors.New("VERACORE_USERNAME must be provided when VERACORE_TOKEN is unset")
		case c.VeraCore.Password == "":
			return errors.New("VERACORE_PASSWORD must be provided when VERACORE_TOKEN is unset")
		case c.VeraCore.SystemID == "":
			return errors.New("VERACORE_SYSTEM_ID must be provided when VERACORE_TOKEN is unset")
		}
	}

	if c.Reports.LocationsReport == "" || c.Reports.UnitsReport == "" {
		return errors.New("report names must not be empty")
	}

	if c.Reports.PollAttempts <= 0 {
		return errors.New("REPORT_POLL_ATTEMPTS must be positive")
	}

	if len(c.Putaway.Zones) == 0 {
		return errors.New("PUTAWAY_ZONES must name at least one zone")
	}

	if c.Putaway.MoveDelay < 0 {
		return errors.New("PUTAWAY_MOVE_DELAY_MS must not be negative")
	}

	if c.Putaway.CronSchedule == "" {
		return errors.New("PUTAWAY_CRON_SCHEDULE must be provided")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when PLACEMENT_SPREADSHEET_ID is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseOwnerZones parses "Owner A=West;Owner B=West,East" into a restriction
// map. Malformed entries are skipped rather than rejected.
func parseOwnerZones(value string) map[string][]string {
	if value == "" {
		return nil
	}
	out := make(map[string][]string)
	for _, entry := range strings.Split(value, ";") {
		owner, zones, ok := strings.Cut(entry, "=")
		owner = strings.TrimSpace(owner)
		if !ok || owner == "" {
			continue
		}
		if list := splitList(zones); len(list) > 0 {
			out[owner] = list
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
