package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BaseURL    string
	SearchType string // fixed "Jenis Carian" option
	State      string // fixed "Negeri" option
	PemajuList string
	RootDir    string
	Headless   bool

	Timing     TimingConfig
	DBURL      string // Postgres (live tables + history)
	DBPath     string // SQLite operational ledger
	Scheduler  SchedulerConfig
	Archive    ArchiveConfig
	WebhookURL string

	Portal *Portal
}

type TimingConfig struct {
	ClickDelay     time.Duration
	PageLoadDelay  time.Duration
	MaxWait        time.Duration
	FieldWait      time.Duration
	ButtonWait     time.Duration
	VerifyAttempts int
	VerifyInterval time.Duration
}

type SchedulerConfig struct {
	ScrapeCron  string
	PublishCron string
	Interval    time.Duration
}

type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string // optional: DO Spaces, R2, etc.
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:    getEnv("TEDUH_BASE_URL", "https://teduh.kpkt.gov.my/semakan-status-kemajuan"),
		SearchType: getEnv("SEARCH_TYPE", "Pemaju"),
		State:      getEnv("SEARCH_STATE", "Melaka"),
		PemajuList: getEnv("PEMAJU_LIST", "pemaju_list.txt"),
		RootDir:    getEnv("ROOT_DIR", "KPKT_SCRAPED_DATA"),
		Headless:   getEnvBool("HEADLESS", true),
		Timing: TimingConfig{
			ClickDelay:     getEnvDuration("DELAY_CLICK", 1500*time.Millisecond),
			PageLoadDelay:  getEnvDuration("DELAY_PAGE_LOAD", 3500*time.Millisecond),
			MaxWait:        getEnvDuration("MAX_WAIT", 30*time.Second),
			FieldWait:      getEnvDuration("FIELD_WAIT", 15*time.Second),
			ButtonWait:     getEnvDuration("BUTTON_WAIT", 12*time.Second),
			VerifyAttempts: getEnvInt("VERIFY_ATTEMPTS", 10),
			VerifyInterval: getEnvDuration("VERIFY_INTERVAL", 2*time.Second),
		},
		DBURL:  os.Getenv("DB_URL"),
		DBPath: getEnv("DB_PATH", "teduh.db"),
		Scheduler: SchedulerConfig{
			ScrapeCron:  getEnv("SCRAPE_CRON", "0 5 * * *"),
			PublishCron: getEnv("PUBLISH_CRON", "30 7 * * *"),
		},
		Archive: ArchiveConfig{
			Bucket:          os.Getenv("ARCHIVE_S3_BUCKET"),
			Region:          getEnv("ARCHIVE_S3_REGION", "ap-southeast-1"),
			Endpoint:        os.Getenv("ARCHIVE_S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("ARCHIVE_S3_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("ARCHIVE_S3_SECRET_KEY"),
			Prefix:          getEnv("ARCHIVE_S3_PREFIX", "snapshots"),
		},
		WebhookURL: os.Getenv("PUBLISH_WEBHOOK_URL"),
	}

	if interval := os.Getenv("SCRAPE_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	portal, err := LoadPortal(getEnv("PORTAL_CONFIG", "config/portal.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Portal = portal

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
