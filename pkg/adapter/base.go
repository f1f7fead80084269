package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fp-wemove/ingrid-iplug-dsc/pkg/core"
)

// PlaceholderStyle selects how '?' placeholders are sent to the driver.
type PlaceholderStyle int

const (
	// PlaceholderQuestion passes statements through unchanged.
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar rewrites '?' to $1, $2, ... (PostgreSQL).
	PlaceholderDollar
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, and Query implementations.
type BaseSQLAdapter struct {
	DB          *sql.DB
	Cfg         core.AdapterConfig
	Logger      *slog.Logger
	Placeholder PlaceholderStyle
}

func (b *BaseSQLAdapter) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		b.logger().Debug("closing database connection")
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Exec executes a statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established: %w", core.ErrNotConnected)
	}
	_, err := b.DB.ExecContext(ctx, b.Rebind(sqlStr), args...)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a statement and returns all result rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) ([]*core.Row, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established: %w", core.ErrNotConnected)
	}
	rows, err := b.DB.QueryContext(ctx, b.Rebind(sqlStr), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return ScanRows(rows)
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// Rebind rewrites '?' placeholders for the adapter's placeholder style.
func (b *BaseSQLAdapter) Rebind(sqlStr string) string {
	if b.Placeholder != PlaceholderDollar {
		return sqlStr
	}
	return RebindDollar(sqlStr)
}

// RebindDollar replaces every '?' outside quoted literals and identifiers
// with a numbered $n placeholder.
func RebindDollar(sqlStr string) string {
	if !strings.Contains(sqlStr, "?") {
		return sqlStr
	}

	var sb strings.Builder
	sb.Grow(len(sqlStr) + 8)

	n := 0
	var quote byte
	for i := 0; i < len(sqlStr); i++ {
		c := sqlStr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '?':
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// ScanRows reads every remaining row of rows into core.Row values.
func ScanRows(rows *sql.Rows) ([]*core.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []*core.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, core.NewRow(columns, values))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}
