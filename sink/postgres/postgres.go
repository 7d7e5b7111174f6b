// Package postgres stores dissected events in a PostgreSQL table.
//
// Each row keeps the original line, the event fields as jsonb, the event
// tags and whether every mapping matched:
//
//	CREATE TABLE dissected_events (
//	    id         bigserial PRIMARY KEY,
//	    source     text        NOT NULL,
//	    fields     jsonb       NOT NULL,
//	    tags       text[]      NOT NULL DEFAULT '{}',
//	    matched    boolean     NOT NULL,
//	    created_at timestamptz NOT NULL DEFAULT now()
//	)
//
// The caller opens the *sql.DB and registers the driver, usually with a
// blank import of github.com/lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/coregx/dissect/event"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "dissected_events"

// Writer inserts events into one table.
type Writer struct {
	db     *sql.DB
	table  string // quoted identifier
	insert string
}

// Row is one event to store.
type Row struct {
	Source  string
	Event   *event.Event
	Matched bool
}

// New returns a Writer for table. An empty table name selects DefaultTable.
func New(db *sql.DB, table string) (*Writer, error) {
	if db == nil {
		return nil, errors.New("postgres: nil database handle")
	}
	if table == "" {
		table = DefaultTable
	}
	quoted := pq.QuoteIdentifier(table)
	return &Writer{
		db:     db,
		table:  quoted,
		insert: "INSERT INTO " + quoted + " (source, fields, tags, matched) VALUES ($1, $2, $3, $4)",
	}, nil
}

// EnsureTable creates the table when it does not exist.
func (w *Writer) EnsureTable(ctx context.Context) error {
	stmt := "CREATE TABLE IF NOT EXISTS " + w.table + ` (
		id bigserial PRIMARY KEY,
		source text NOT NULL,
		fields jsonb NOT NULL,
		tags text[] NOT NULL DEFAULT '{}',
		matched boolean NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`
	if _, err := w.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "postgres: create table %s", w.table)
	}
	return nil
}

// Write inserts a single event.
func (w *Writer) Write(ctx context.Context, source string, ev *event.Event, matched bool) error {
	args, err := rowArgs(Row{Source: source, Event: ev, Matched: matched})
	if err != nil {
		return err
	}
	if _, err := w.db.ExecContext(ctx, w.insert, args...); err != nil {
		return errors.Wrap(err, "postgres: insert event")
	}
	return nil
}

// WriteAll inserts rows in one transaction. Either all rows are stored or
// none are.
func (w *Writer) WriteAll(ctx context.Context, rows []Row) (err error) {
	if len(rows) == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "postgres: begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, w.insert)
	if err != nil {
		return errors.Wrap(err, "postgres: prepare insert")
	}
	defer stmt.Close()

	for i, r := range rows {
		args, argErr := rowArgs(r)
		if argErr != nil {
			return argErr
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "postgres: insert row %d", i)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "postgres: commit")
	}
	return nil
}

func rowArgs(r Row) ([]any, error) {
	if r.Event == nil {
		return nil, errors.New("postgres: nil event")
	}
	fields, err := json.Marshal(r.Event.Fields())
	if err != nil {
		return nil, errors.Wrap(err, "postgres: encode fields")
	}
	tags := r.Event.Tags()
	if tags == nil {
		tags = []string{}
	}
	return []any{r.Source, string(fields), pq.Array(tags), r.Matched}, nil
}
