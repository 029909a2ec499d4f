package gormadapter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/guardian-sec/guardian/internal/log"
)

var commonStatements = []string{
	`PRAGMA foreign_keys = ON`, // relationship and mapping rows cascade with their endpoints
}

var writerStatements = []string{
	`PRAGMA synchronous = OFF`,
	`PRAGMA journal_mode = MEMORY`,
}

var readConnectionOptions = []string{
	"mode=ro", // opens the database as read-only
}

type config struct {
	debug      bool
	path       string
	writable   bool
	truncate   bool
	models     []any
	memory     bool
	statements []string
}

type Option func(*config)

func WithDebug(debug bool) Option {
	return func(c *config) {
		c.debug = debug
	}
}

// WithTruncate removes any existing DB file before opening (implies writable).
func WithTruncate(truncate bool) Option {
	return func(c *config) {
		c.truncate = truncate
		if truncate {
			c.writable = true
		}
	}
}

func WithStatements(statements ...string) Option {
	return func(c *config) {
		c.statements = append(c.statements, statements...)
	}
}

// WithWritable opens the DB for writing and migrates the given models.
func WithWritable(write bool, models []any) Option {
	return func(c *config) {
		c.writable = write
		c.models = models
	}
}

func newConfig(path string, opts []Option) config {
	c := config{}
	c.apply(path, opts)
	return c
}

func (c *config) apply(path string, opts []Option) {
	for _, o := range opts {
		o(c)
	}
	c.memory = len(path) == 0
	c.path = path
}

func (c config) connectionString() string {
	var conn string
	if c.path == "" {
		conn = "file::memory:?_pragma=foreign_keys(1)"
	} else {
		conn = fmt.Sprintf("file:%s?cache=shared&_pragma=foreign_keys(1)", c.path)
	}

	if !c.writable && !c.memory {
		for _, o := range readConnectionOptions {
			conn += fmt.Sprintf("&%s", o)
		}
	}
	return conn
}

// Open a new connection to a sqlite3 database file. An empty path opens an in-memory database.
func Open(path string, options ...Option) (*gorm.DB, error) {
	cfg := newConfig(path, options)

	if cfg.truncate && !cfg.writable {
		return nil, fmt.Errorf("cannot truncate a read-only DB")
	}

	if cfg.truncate && !cfg.memory {
		if err := deleteDB(path); err != nil {
			return nil, err
		}
	}

	if cfg.writable && !cfg.memory {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("unable to create parent directory for DB file: %w", err)
		}
	}

	dbObj, err := gorm.Open(sqlite.Open(cfg.connectionString()), &gorm.Config{
		Logger: newLogger(cfg.debug, 400*time.Millisecond),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to DB: %w", err)
	}

	return cfg.prepareDB(dbObj)
}

func (c config) prepareDB(dbObj *gorm.DB) (*gorm.DB, error) {
	sqlDB, err := dbObj.DB()
	if err != nil {
		return nil, fmt.Errorf("unable to get DB connection pool: %w", err)
	}
	// sqlite allows a single writer and in-memory databases are per connection, so keep exactly one connection
	sqlDB.SetMaxOpenConns(1)

	if c.writable {
		log.Debug("using writable DB statements")
		if err := c.applyStatements(dbObj, writerStatements); err != nil {
			return nil, fmt.Errorf("unable to apply DB writer statements: %w", err)
		}
	}

	if err := c.applyStatements(dbObj, commonStatements); err != nil {
		return nil, fmt.Errorf("unable to apply DB common statements: %w", err)
	}

	if len(c.statements) > 0 {
		if err := c.applyStatements(dbObj, c.statements); err != nil {
			return nil, fmt.Errorf("unable to apply DB custom statements: %w", err)
		}
	}

	if len(c.models) > 0 && c.writable {
		log.Debug("applying DB migrations")
		if err := dbObj.AutoMigrate(c.models...); err != nil {
			return nil, fmt.Errorf("unable to migrate: %w", err)
		}
	}

	if c.debug {
		dbObj = dbObj.Debug()
	}

	return dbObj, nil
}

func (c config) applyStatements(db *gorm.DB, statements []string) error {
	for _, sqlStmt := range statements {
		if err := db.Exec(sqlStmt).Error; err != nil {
			return fmt.Errorf("unable to execute (%s): %w", sqlStmt, err)
		}
		if strings.HasPrefix(sqlStmt, "PRAGMA") {
			name, value, err := c.pragmaNameValue(sqlStmt)
			if err != nil {
				return fmt.Errorf("unable to parse PRAGMA statement: %w", err)
			}

			var result string
			if err := db.Raw("PRAGMA " + name + ";").Scan(&result).Error; err != nil {
				return fmt.Errorf("unable to verify PRAGMA %q: %w", name, err)
			}

			if !strings.EqualFold(result, value) {
				if value == "ON" && result == "1" {
					continue
				}
				if value == "OFF" && result == "0" {
					continue
				}
				return fmt.Errorf("PRAGMA %q was not set to %q (%q)", name, value, result)
			}
		}
	}
	return nil
}

func (c config) pragmaNameValue(sqlStmt string) (string, string, error) {
	sqlStmt = strings.TrimSuffix(strings.TrimSpace(sqlStmt), ";")
	if strings.Count(sqlStmt, ";") > 0 {
		return "", "", fmt.Errorf("PRAGMA statements should not contain semicolons: %q", sqlStmt)
	}

	// sqlite does not return errors for unknown pragma keys or values, so the name and value are parsed from
	// the statement and verified explicitly afterwards
	clean := strings.TrimPrefix(sqlStmt, "PRAGMA")
	fields := strings.SplitN(clean, "=", 2)
	if len(fields) != 2 {
		return "", "", fmt.Errorf("unable to parse PRAGMA statement: %q", sqlStmt)
	}

	name := strings.ToLower(strings.TrimSpace(fields[0]))
	value := strings.TrimSpace(fields[1])
	if name == "" {
		return "", "", fmt.Errorf("unable to parse name from PRAGMA statement: %q", sqlStmt)
	}

	return name, value, nil
}

func deleteDB(path string) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("unable to remove existing DB file: %w", err)
		}
	}

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0700); err != nil {
		return fmt.Errorf("unable to create parent directory %q for DB file: %w", parent, err)
	}

	return nil
}
