package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	// DB
	Env    string // "dev" | "prod"
	Store  string // "memory" | "sqlite" | "postgres"
	DBPath string // e.g. "./data/credtrack.db"
	DBURL  string // postgres URL when Store == "postgres"

	// Dashboard defaults
	ActionItemLimit   int // action queue length (default 5)
	RenewalWindowDays int // expiring-soon horizon (default 60)

	SeedDev bool // load starter data on boot (dev only)
}

func FromEnv() Config {
	addr := getenvDefault("CREDTRACK_HTTP_ADDR", ":8080")

	env := strings.ToLower(getenvDefault("CREDTRACK_ENV", "dev"))
	if env != "dev" && env != "prod" {
		// fail-soft: treat unknown as dev
		env = "dev"
	}

	storeKind := strings.ToLower(getenvDefault("CREDTRACK_STORE", "sqlite"))
	switch storeKind {
	case "memory", "sqlite", "postgres":
	default:
		storeKind = "sqlite"
	}

	dbPath := getenvDefault("CREDTRACK_DB_PATH", "./data/credtrack.db")

	dbURL := os.Getenv("CREDTRACK_DB_URL")
	if strings.TrimSpace(dbURL) == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	actionLimit := getenvInt("CREDTRACK_ACTION_LIMIT", 5)
	if actionLimit <= 0 {
		actionLimit = 5
	}
	renewalWindow := getenvInt("CREDTRACK_RENEWAL_WINDOW_DAYS", 60)
	if renewalWindow <= 0 {
		renewalWindow = 60
	}

	// Dev defaults to a seeded database so the dashboard isn't empty.
	seedDev := env == "dev"
	if v := os.Getenv("CREDTRACK_SEED_DEV"); v != "" {
		seedDev = strings.EqualFold(v, "true") || v == "1"
	}

	return Config{
		HTTPAddr: addr,
		Env:      env,
		Store:    storeKind,
		DBPath:   dbPath,
		DBURL:    dbURL,

		ActionItemLimit:   actionLimit,
		RenewalWindowDays: renewalWindow,

		SeedDev: seedDev,
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
