package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"formgate/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Dialect selects the placeholder style used by the repository layer.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

var (
	DB         *sql.DB
	ActiveDial Dialect
)

const schema = `
CREATE TABLE IF NOT EXISTS form_submissions (
    id          TEXT PRIMARY KEY,
    form_id     TEXT NOT NULL,
    data        TEXT NOT NULL,
    ip_address  TEXT,
    user_agent  TEXT,
    referrer    TEXT,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_form_submissions_created_at ON form_submissions (created_at);
CREATE INDEX IF NOT EXISTS idx_form_submissions_form_id ON form_submissions (form_id);
`

func Connect() {
	var err error
	DB, ActiveDial, err = Open(config.AppConfig.DBDriver, config.AppConfig.DBPath, config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	fmt.Println("Successfully connected to the database!")
}

// Open opens the submission store for the given driver and ensures the
// schema exists. Used by Connect and directly by tests.
func Open(driver, sqlitePath, pgConnStr string) (*sql.DB, Dialect, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	switch driver {
	case "postgres":
		dialect = DialectPostgres
		db, err = sql.Open("pgx", pgConnStr)
	case "sqlite", "":
		dialect = DialectSQLite
		dsn := sqlitePath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"
		db, err = sql.Open("sqlite", dsn)
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("ping database: %w", err)
	}

	if err = ensureSchema(db); err != nil {
		db.Close()
		return nil, "", err
	}

	return db, dialect, nil
}

func ensureSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Rebind rewrites '?' placeholders to the dialect's native style. Queries
// are written with '?' throughout; Postgres needs '$1'..'$N'.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	argID := 1
	for _, ch := range query {
		if ch == '?' {
			fmt.Fprintf(&b, "$%d", argID)
			argID++
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}
