// Command dissect splits log lines into fields using dissect mappings.
//
// Lines are read from stdin and each dissected event is written to stdout
// as one JSON object per line:
//
//	tail -f app.log | dissect -mapping '%{ts} %{+ts} %{level} %{msg}'
//	dissect -config dissect.yml -pg postgres://localhost/logs < app.log
//
// When stdin is a terminal, or with -i, lines are read from an interactive
// prompt instead. Ctrl-C on an empty line quits.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/coregx/dissect/config"
	"github.com/coregx/dissect/event"
	"github.com/coregx/dissect/filter"
	"github.com/coregx/dissect/sink/postgres"
)

// batchSize is the number of events buffered before a Postgres write.
const batchSize = 256

type options struct {
	configPath  string
	mapping     string
	source      string
	dsn         string
	table       string
	interactive bool
	logLevel    string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "dissect:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("dissect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.mapping, "mapping", "", "dissect mapping applied to the source field")
	fs.StringVar(&opts.source, "source", "message", "field that holds each input line")
	fs.StringVar(&opts.dsn, "pg", "", "PostgreSQL DSN; events are stored when set")
	fs.StringVar(&opts.table, "pg-table", "", "PostgreSQL table (default "+postgres.DefaultTable+")")
	fs.BoolVar(&opts.interactive, "i", false, "read lines from an interactive prompt")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, errors.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := &config.Config{Filter: filter.DefaultConfig()}
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.mapping != "" {
		cfg.Filter.Mapping = append(cfg.Filter.Mapping, filter.MappingConfig{
			Source:   opts.source,
			Patterns: []string{opts.mapping},
		})
	}
	if len(cfg.Filter.Mapping) == 0 {
		return nil, errors.New("no mapping configured: use -mapping or -config")
	}
	if opts.dsn != "" {
		cfg.Postgres.DSN = opts.dsn
	}
	if opts.table != "" {
		cfg.Postgres.Table = opts.table
	}
	return cfg, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrap(err, "invalid -log-level")
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func openSink(ctx context.Context, pg config.Postgres) (*postgres.Writer, func(), error) {
	db, err := sql.Open("postgres", pg.DSN)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open db")
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	closeDB := func() { _ = db.Close() }
	if err := db.PingContext(ctx); err != nil {
		closeDB()
		return nil, nil, errors.Wrap(err, "ping db")
	}

	w, err := postgres.New(db, pg.Table)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	if err := w.EnsureTable(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	return w, closeDB, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	logger, err := newLogger(opts.logLevel, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	f, err := filter.New(cfg.Filter, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	d := &dissector{
		filter: f,
		source: opts.source,
		out:    stdout,
		logger: logger,
	}
	if cfg.Postgres.Enabled() {
		sink, closeSink, err := openSink(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer closeSink()
		d.sink = sink
	}

	if opts.interactive || isTerminal(stdin) {
		return d.repl(ctx)
	}
	return d.stream(ctx, stdin)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}

type dissector struct {
	filter *filter.Filter
	source string
	out    io.Writer
	sink   *postgres.Writer
	logger *slog.Logger
}

func (d *dissector) dissect(line string) (*event.Event, bool) {
	ev := event.FromMap(map[string]any{d.source: line})
	return ev, d.filter.Apply(ev)
}

// stream dissects every line of r, writing JSON lines to the output and
// batching rows for the sink.
func (d *dissector) stream(ctx context.Context, r io.Reader) error {
	enc := json.NewEncoder(d.out)
	enc.SetEscapeHTML(false)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var batch []postgres.Row
	flush := func() error {
		if d.sink == nil || len(batch) == 0 {
			return nil
		}
		err := d.sink.WriteAll(ctx, batch)
		batch = batch[:0]
		return err
	}

	lines := 0
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		lines++

		ev, matched := d.dissect(line)
		if err := enc.Encode(ev); err != nil {
			return errors.Wrap(err, "write event")
		}
		if d.sink != nil {
			batch = append(batch, postgres.Row{Source: line, Event: ev, Matched: matched})
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}
	if err := flush(); err != nil {
		return err
	}

	stats := d.filter.Stats()
	d.logger.Info("input done",
		slog.Int("lines", lines),
		slog.Uint64("matches", stats.Matches),
		slog.Uint64("failures", stats.Failures))
	return nil
}

func (d *dissector) repl(ctx context.Context) error {
	rl, err := readline.New("> ")
	if err != nil {
		return errors.Wrap(err, "readline")
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if line != "" {
					continue
				}
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "readline")
		}

		ev, matched := d.dissect(line)
		b, err := json.MarshalIndent(ev, "", "  ")
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}
		fmt.Fprintln(rl.Stdout(), string(b))

		if d.sink != nil {
			if err := d.sink.Write(ctx, line, ev, matched); err != nil {
				fmt.Fprintln(rl.Stderr(), err)
			}
		}
	}
}
