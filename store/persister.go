// Package store writes aggregated benchmark rows to the results database.
// Persistence is best-effort: incomplete coordinates disable it, and a
// failed write never changes the run's verdict.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/iosweep/iosweep/model"
	"github.com/rs/zerolog"
)

// insertColumns is the column list of the multi-row insert, in the order
// values are bound.
var insertColumns = []string{
	"TestCaseName", "TestDate",
	"HostType", "HostBy", "HostOS", "GuestDistro", "GuestSize", "KernelVersion",
	"QDepth", "BlockSizeKB",
	"seq_read_iops", "seq_read_lat_usec",
	"rand_read_iops", "rand_read_lat_usec",
	"seq_write_iops", "seq_write_lat_usec",
	"rand_write_iops", "rand_write_lat_usec",
}

// Persister inserts aggregated rows into the results store.
type Persister struct {
	logger zerolog.Logger
	cfg    model.StoreConfig

	// now is stubbed in tests
	now func() time.Time
	// open is stubbed in tests
	open func(dsn string) (*sql.DB, error)
}

// New creates a persister for the given store coordinates.
func New(logger zerolog.Logger, cfg model.StoreConfig) *Persister {
	return &Persister{
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open("mysql", dsn)
		},
	}
}

// Persist writes all rows in one multi-row insert statement. It returns
// skipped=true when any required coordinate is blank, which is a disabled
// feature rather than an error. A returned error is for logging only; the
// caller's verdict is already final by the time Persist runs.
func (p *Persister) Persist(ctx context.Context, rows []model.AggregatedRow) (skipped bool, err error) {
	if !p.cfg.Complete() {
		p.logger.Info().Msg("Results store coordinates incomplete, skipping persistence")
		return true, nil
	}
	if len(rows) == 0 {
		p.logger.Info().Msg("No aggregated rows to persist")
		return true, nil
	}

	dsn := p.dsn()
	db, err := p.open(dsn)
	if err != nil {
		return false, fmt.Errorf("failed to open results store: %w", err)
	}
	defer db.Close()

	query, args := buildInsert(p.cfg.Table, p.cfg.TestCaseTag, p.now(), rows)

	p.logger.Info().
		Str("table", p.cfg.Table).
		Int("rows", len(rows)).
		Msg("Persisting aggregated rows")

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("insert into %s failed: %w", p.cfg.Table, err)
	}

	return false, nil
}

// dsn renders the store coordinates as a driver DSN.
func (p *Persister) dsn() string {
	cfg := mysql.NewConfig()
	cfg.User = p.cfg.User
	cfg.Passwd = p.cfg.Password
	cfg.Net = "tcp"
	cfg.Addr = p.cfg.Endpoint
	cfg.DBName = p.cfg.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// buildInsert renders one multi-row insert covering the full row sequence.
// The table name is taken from configuration; all values go through
// placeholders.
func buildInsert(table, tag string, testDate time.Time, rows []model.AggregatedRow) (string, []interface{}) {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(insertColumns)), ",") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(insertColumns, ", "))

	args := make([]interface{}, 0, len(rows)*len(insertColumns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholder)
		args = append(args,
			tag, testDate,
			row.HostType, row.HostBy, row.HostOS, row.GuestDistro, row.GuestSize, row.KernelVersion,
			row.Concurrency, row.BlockSizeKB,
			row.SeqReadIOPS, row.SeqReadLatencyUsec,
			row.RandReadIOPS, row.RandReadLatencyUsec,
			row.SeqWriteIOPS, row.SeqWriteLatencyUsec,
			row.RandWriteIOPS, row.RandWriteLatencyUsec,
		)
	}

	return b.String(), args
}
