package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"candle-sync/internal/storage"
	chstore "candle-sync/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the DSN's database when missing and applies
// all embedded SQL files. The returned connection targets that database.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}
	if err := createDatabase(ctx, dsn, dbName); err != nil {
		return nil, err
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}
	if err := applyClickhouse(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func createDatabase(ctx context.Context, dsn, dbName string) error {
	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return fmt.Errorf("connect clickhouse admin: %w", err)
	}
	defer admin.Close()

	if err := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName)); err != nil {
		return fmt.Errorf("create database %s: %w", dbName, err)
	}
	return nil
}

func applyClickhouse(ctx context.Context, conn *chstore.Conn) error {
	files, err := load(ClickhouseFS, "clickhouse")
	if err != nil {
		return err
	}

	for _, m := range files {
		stmts, err := splitStatements(m.sql)
		if err != nil {
			return fmt.Errorf("split migration %s: %w", m.name, err)
		}
		// The native protocol accepts one statement per Exec.
		for _, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.name, err)
			}
		}
	}
	return nil
}

// splitStatements drops -- comment lines and splits on semicolons.
// A semicolon inside a single-quoted literal is rejected rather than split.
func splitStatements(input string) ([]string, error) {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}
	body := strings.Join(kept, "\n")

	var (
		stmts    []string
		inString bool
		start    int
	)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\'':
			if inString && i+1 < len(body) && body[i+1] == '\'' {
				i++
				continue
			}
			inString = !inString
		case ';':
			if inString {
				return nil, fmt.Errorf("semicolon inside string literal at offset %d", i)
			}
			if stmt := strings.TrimSpace(body[start:i]); stmt != "" {
				stmts = append(stmts, stmt)
			}
			start = i + 1
		}
	}
	if stmt := strings.TrimSpace(body[start:]); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}

// ClickhouseAdmin provisions the measurement table in ClickHouse.
type ClickhouseAdmin struct {
	conn *chstore.Conn
}

// NewClickhouseAdmin creates an admin on a connection already bound to the target database.
func NewClickhouseAdmin(conn *chstore.Conn) *ClickhouseAdmin {
	return &ClickhouseAdmin{conn: conn}
}

var _ storage.TableAdmin = (*ClickhouseAdmin)(nil)

// EnsureTable applies the embedded migrations on the bound database.
func (a *ClickhouseAdmin) EnsureTable(ctx context.Context) error {
	return applyClickhouse(ctx, a.conn)
}

// DropTable removes the measurement table.
func (a *ClickhouseAdmin) DropTable(ctx context.Context) error {
	if err := a.conn.Exec(ctx, "DROP TABLE IF EXISTS "+chstore.MeasurementsTable); err != nil {
		return fmt.Errorf("drop %s: %w", chstore.MeasurementsTable, err)
	}
	return nil
}
