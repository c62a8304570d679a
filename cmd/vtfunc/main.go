// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Command vtfunc runs SQL against the bundled table-valued functions.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mdhender/vtfunc"
	"github.com/mdhender/vtfunc/producers"
)

type options struct {
	db      string
	scripts string
	debug   bool
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "vtfunc",
		Short:         "Query Go table-valued functions with SQLite",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	bindFlags(root.PersistentFlags(), opts)

	root.AddCommand(newQueryCmd(opts), newFuncsCmd(opts), newVersionCmd())
	return root
}

func bindFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVar(&opts.db, "db", envOr("VTFUNC_DB", ":memory:"), "database path (\":memory:\" or an absolute .db path)")
	flags.StringVar(&opts.scripts, "scripts", "", "directory of NNN_comment.sql setup scripts")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.DurationVar(&opts.timeout, "http-timeout", 30*time.Second, "timeout for scraper requests")
}

func newQueryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query SQL [ARGS...]",
		Short: "Run a query and print rows tab-separated",
		Example: `  vtfunc query 'SELECT value FROM series(0, 10, 2)'
  vtfunc query 'SELECT * FROM regex_search(?, ?)' '[0-9]+' 'foo 123 bar 45'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, err := openDB(ctx, cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			defer db.Close()

			params := make([]any, 0, len(args)-1)
			for _, a := range args[1:] {
				params = append(params, parseArg(a))
			}
			return runQuery(ctx, cmd.OutOrStdout(), db.DB, args[0], params...)
		},
	}
}

func newFuncsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "funcs",
		Short: "List the available functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			db, err := openDB(ctx, cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			for _, name := range db.Registry().Names() {
				d, _ := db.Registry().Lookup(name)
				fmt.Fprintf(out, "%s(%s) -> %s\n", d.Name, strings.Join(d.ParamNames(), ", "), strings.Join(d.Columns, ", "))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), vtfunc.Version())
		},
	}
}

func openDB(ctx context.Context, logw io.Writer, opts *options) (*vtfunc.DB, error) {
	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logw, &slog.HandlerOptions{Level: level}))

	var scripts fs.FS
	if opts.scripts != "" {
		scripts = os.DirFS(opts.scripts)
	}

	return vtfunc.Open(ctx, vtfunc.Config{
		Path:      opts.db,
		Logger:    logger,
		Scripts:   scripts,
		Producers: producers.All(&http.Client{Timeout: opts.timeout}),
	})
}

func runQuery(ctx context.Context, w io.Writer, db *sql.DB, query string, args ...any) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	fields := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range vals {
			fields[i] = formatValue(v)
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	return nil
}

// parseArg passes numeric command-line arguments to SQLite as numbers.
func parseArg(s string) any {
	if strings.EqualFold(s, "null") {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
