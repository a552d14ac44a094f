package logger

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	_ "github.com/microsoft/go-mssqldb"
)

// dialect abstracts the two supported database families behind one
// interface: DSN construction, log-table DDL and placeholder syntax.
type dialect interface {
	driverName() string
	dsn(cfg DatabaseConfig) string
	createTable(name string) string
	rebind(query string) string
}

func dialectFor(databaseType string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(databaseType)) {
	case "mssql":
		return mssqlDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported database type %q (want mssql or mysql)", ErrConfiguration, databaseType)
	}
}

type mssqlDialect struct{}

func (mssqlDialect) driverName() string { return "sqlserver" }

func (mssqlDialect) dsn(cfg DatabaseConfig) string {
	// url.UserPassword percent-encodes the credentials, so special
	// characters survive the connection string.
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     cfg.Server,
		RawQuery: url.Values{"database": {cfg.Name}}.Encode(),
	}
	return u.String()
}

func (mssqlDialect) createTable(name string) string {
	return fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
CREATE TABLE %s (
	LogID INT IDENTITY(1,1) PRIMARY KEY,
	LogTime DATETIME2 NOT NULL DEFAULT SYSDATETIME(),
	LogLevel NVARCHAR(50) NOT NULL,
	LogMessage NVARCHAR(MAX) NOT NULL
)`, name, name)
}

// rebind rewrites ? placeholders to the @pN form the sqlserver driver
// expects, leaving quoted literals alone.
func (mssqlDialect) rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)

	inSingleQuote := false
	arg := 1
	for i := 0; i < len(query); i++ {
		ch := query[i]
		if ch == '\'' {
			inSingleQuote = !inSingleQuote
			b.WriteByte(ch)
			continue
		}
		if ch == '?' && !inSingleQuote {
			b.WriteString("@p")
			b.WriteString(strconv.Itoa(arg))
			arg++
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

type mysqlDialect struct{}

func (mysqlDialect) driverName() string { return "mysql" }

func (mysqlDialect) dsn(cfg DatabaseConfig) string {
	mc := mysqldrv.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Server
	mc.DBName = cfg.Name
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.ParseTime = true
	return mc.FormatDSN()
}

func (mysqlDialect) createTable(name string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	LogID INT AUTO_INCREMENT PRIMARY KEY,
	LogTime TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	LogLevel VARCHAR(50) NOT NULL,
	LogMessage LONGTEXT NOT NULL
)`, name)
}

func (mysqlDialect) rebind(query string) string { return query }

// getConnection returns the memoized database handle, building it on
// first use. A construction failure leaves no cached handle, so the next
// call attempts construction again; retry is caller-driven.
func (l *Logger) getConnection() (*sql.DB, error) {
	l.dbMu.Lock()
	defer l.dbMu.Unlock()

	if l.db != nil {
		return l.db, nil
	}

	cfg := l.cfg.Database
	if cfg.Server == "" || cfg.Name == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: database server, name, username and password must all be set (or disable include_database)", ErrConfiguration)
	}

	if l.dialect == nil {
		d, err := dialectFor(cfg.Type)
		if err != nil {
			return nil, err
		}
		l.dialect = d
	}

	db, err := sql.Open(l.dialect.driverName(), l.dialect.dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	db.SetConnMaxLifetime(lifetime)

	l.db = db
	return db, nil
}

// ensureTable issues the dialect's idempotent DDL so the log table
// exists with its four columns. Calling it twice is a no-op the second
// time.
func (l *Logger) ensureTable(db *sql.DB, d dialect, name string) error {
	if _, err := db.Exec(d.createTable(name)); err != nil {
		return fmt.Errorf("%w: failed to create table %s: %w", ErrSchema, name, err)
	}
	return nil
}

// record inserts one log row. The connectivity probe runs first; any
// failure after it is reported to the file sink best-effort and then
// propagated unchanged.
func (l *Logger) record(message, level, ts string, now time.Time) error {
	db, err := l.getConnection()
	if err != nil {
		return err
	}

	var one int
	if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
		_ = l.writeFile("Database connection failed: "+err.Error(), LevelError, ts)
		return fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}

	table := l.cfg.Table.TableName
	if table == "" {
		return fmt.Errorf("%w: table name is not set; configure a table with columns LogID (auto-increment primary key), LogTime (timestamp, default now), LogLevel (varchar 50) and LogMessage (long text)", ErrConfiguration)
	}

	if l.cfg.Table.CreateTableIfNotExists {
		if err := l.ensureTable(db, l.dialect, table); err != nil {
			_ = l.writeFile("Database logging failed: "+err.Error(), LevelError, ts)
			return err
		}
	}

	// Identifiers are developer-configured; row values are always bound.
	query := l.dialect.rebind(fmt.Sprintf("INSERT INTO %s (LogTime, LogLevel, LogMessage) VALUES (?, ?, ?)", table))
	if _, err := db.Exec(query, now, level, message); err != nil {
		insertErr := fmt.Errorf("%w: %w", ErrInsert, err)
		_ = l.writeFile("Database logging failed: "+insertErr.Error(), LevelError, ts)
		return insertErr
	}
	return nil
}
