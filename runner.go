package sqlexec

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/suri14878/sqlexec/sink"
)

// Runner executes SQL files end to end: parse, run each statement in
// index order through the paginated engine, and stream every statement's
// batches into its own output file. File runs are wrapped in the retry
// coordinator, so a transient connection loss re-opens the connection
// and redoes the file (or resumes from the checkpoint, when one is
// configured).
type Runner struct {
	connector Connector
	logger    *slog.Logger

	// Configuration overrides (nil means use interface value or default)
	pageSize       *int
	rowLimit       *int
	fileWorkers    *int
	retry          *RetryPolicy
	reportInterval *int

	format      sink.Format
	sinkOpts    []sink.Option
	checkpoints CheckpointStore

	// Optional capabilities (detected from the connector value)
	pageSizeIface    PageSizeProvider
	rowLimitIface    RowLimitProvider
	fileWorkersIface FileWorkersProvider
	retryIface       RetryPolicyProvider
	errHandler       ErrorHandler
	progress         ProgressReporter
	starter          Starter
	stopper          Stopper
}

// NewRunner creates a Runner over the given connector. Optional
// capability interfaces implemented by the connector value (the
// configuration providers in config.go and the hooks in hooks.go) are
// auto-detected; WithXxx builder methods override them.
//
//	runner := sqlexec.NewRunner(pg).
//	    WithFormat(sink.CSV).
//	    WithPageSize(500).
//	    WithRowLimit(100000)
//	stats, err := runner.RunFile(ctx, "queries/daily.sql", "out/daily")
func NewRunner(connector Connector) *Runner {
	r := &Runner{
		connector: connector,
		logger:    slog.Default(),
		format:    sink.CSV,
	}

	if p, ok := connector.(PageSizeProvider); ok {
		r.pageSizeIface = p
	}
	if p, ok := connector.(RowLimitProvider); ok {
		r.rowLimitIface = p
	}
	if p, ok := connector.(FileWorkersProvider); ok {
		r.fileWorkersIface = p
	}
	if p, ok := connector.(RetryPolicyProvider); ok {
		r.retryIface = p
	}
	if h, ok := connector.(ErrorHandler); ok {
		r.errHandler = h
	}
	if p, ok := connector.(ProgressReporter); ok {
		r.progress = p
	}
	if s, ok := connector.(Starter); ok {
		r.starter = s
	}
	if s, ok := connector.(Stopper); ok {
		r.stopper = s
	}

	return r
}

// WithFormat selects the output format. The default is sink.CSV.
func (r *Runner) WithFormat(f sink.Format) *Runner {
	r.format = f
	return r
}

// WithSinkOptions passes options (append, header, delimiter) to every
// sink the runner opens.
func (r *Runner) WithSinkOptions(opts ...sink.Option) *Runner {
	r.sinkOpts = opts
	return r
}

// WithPageSize overrides the ambient fetch page size. Statements with a
// PAGINATE SIZE directive keep their own value.
// Priority: this method > PageSizeProvider > DefaultPageSize.
// Values less than 1 are ignored.
func (r *Runner) WithPageSize(n int) *Runner {
	if n >= 1 {
		r.pageSize = &n
	}
	return r
}

// WithRowLimit overrides the ambient per-statement row cap. Statements
// with a ROW LIMIT directive keep their own value.
// Priority: this method > RowLimitProvider > unbounded.
// Negative values are ignored.
func (r *Runner) WithRowLimit(n int) *Runner {
	if n >= 0 {
		r.rowLimit = &n
	}
	return r
}

// WithFileWorkers overrides how many files RunDir executes concurrently.
// Priority: this method > FileWorkersProvider > DefaultFileWorkers.
// Values less than 1 are ignored.
func (r *Runner) WithFileWorkers(n int) *Runner {
	if n >= 1 {
		r.fileWorkers = &n
	}
	return r
}

// WithRetryPolicy overrides the connection-failure retry policy.
// Priority: this method > RetryPolicyProvider > DefaultRetryPolicy.
func (r *Runner) WithRetryPolicy(p RetryPolicy) *Runner {
	r.retry = &p
	return r
}

// WithReportInterval overrides the row interval between progress
// reports. Values less than 1 are ignored.
func (r *Runner) WithReportInterval(n int) *Runner {
	if n >= 1 {
		r.reportInterval = &n
	}
	return r
}

// WithCheckpoints enables per-file resumability through the given store.
func (r *Runner) WithCheckpoints(store CheckpointStore) *Runner {
	r.checkpoints = store
	return r
}

// WithLogger sets the logger for run events. The default is
// slog.Default().
func (r *Runner) WithLogger(l *slog.Logger) *Runner {
	r.logger = l
	return r
}

// RunFile parses the SQL file at sqlPath and executes every statement in
// index order, writing statement k's result to
// "<outPrefix>_<k+1><ext>" with the index zero-padded to the width of
// the statement count. Ambient page-size and row-limit defaults apply
// only to statements without their own directive.
//
// Parse and lookup errors propagate immediately and are never retried;
// the connection is not opened until parsing succeeds. Connection-class
// failures during execution re-open the connection and redo the file per
// the retry policy.
func (r *Runner) RunFile(ctx context.Context, sqlPath, outPrefix string) (*Stats, error) {
	stats := &Stats{}

	if r.starter != nil {
		ctx = r.starter.Start(ctx)
	}

	err := r.runFile(ctx, sqlPath, outPrefix, stats)

	if r.stopper != nil {
		r.stopper.Stop(ctx, stats, err)
	}
	return stats, err
}

func (r *Runner) runFile(ctx context.Context, sqlPath, outPrefix string, stats *Stats) error {
	logger := r.logger.With("run_id", uuid.NewString(), "file", sqlPath)

	text, err := os.ReadFile(sqlPath)
	if err != nil {
		return fmt.Errorf("read sql file: %w", err)
	}
	script, err := Parse(string(text))
	if err != nil {
		return err
	}
	for _, w := range script.Warnings() {
		logger.Warn("parse warning", "warning", w)
	}
	if script.Len() == 0 {
		logger.Warn("no statements in file")
		return nil
	}

	logger.Info("executing script", "statements", script.Len())

	err = Do(ctx, r.connector, r.resolveRetryPolicy(), func(ctx context.Context, conn Conn) error {
		return r.runScript(ctx, conn, script, sqlPath, outPrefix, stats, logger)
	})
	if err != nil {
		logger.Error("script failed", "error", err, "stats", stats)
		return err
	}

	if r.checkpoints != nil {
		if cerr := r.checkpoints.Clear(ctx, sqlPath); cerr != nil {
			return fmt.Errorf("clear checkpoint: %w", cerr)
		}
	}
	logger.Info("script complete", "stats", stats)
	return nil
}

// runScript executes one parsed script on one connection. It is the unit
// the retry coordinator re-invokes from scratch, so it restores progress
// from the checkpoint (if any) before touching the backend.
func (r *Runner) runScript(ctx context.Context, conn Conn, script *Script, sqlPath, outPrefix string, stats *Stats, logger *slog.Logger) error {
	startIndex := 0
	if r.checkpoints != nil {
		cp, err := r.checkpoints.Load(ctx, sqlPath)
		if err != nil {
			return err
		}
		if cp != nil && cp.ScriptChecksum == script.Checksum() {
			startIndex = cp.NextIndex
			if cp.Stats != nil {
				stats.restore(cp.Stats)
			}
			logger.Info("resuming from checkpoint", "next_index", startIndex)
		}
	}

	pad := len(fmt.Sprint(script.Len()))
	pageSize := r.resolvePageSize()
	rowLimit := r.resolveRowLimit()

	for _, stmt := range script.Statements() {
		if stmt.Index() < startIndex {
			continue
		}
		outPath := fmt.Sprintf("%s_%0*d", outPrefix, pad, stmt.Index()+1)

		err := r.runStatement(ctx, conn, stmt, outPath, pageSize, rowLimit, stats, logger)
		if err != nil {
			if IsConnectionFailure(err) {
				// Let the retry coordinator re-open and redo the file.
				return err
			}
			stats.incErrors(1)
			if r.errHandler != nil && r.errHandler.OnError(ctx, stmt, err) == ActionSkip {
				stats.incSkipped(1)
				logger.Warn("statement skipped", "statement", stmt.LogName(), "error", err)
				continue
			}
			return err
		}

		stats.incStatements(1)
		if r.progress != nil {
			r.progress.OnProgress(ctx, stats)
		}
		if r.checkpoints != nil {
			cerr := r.checkpoints.Save(ctx, &Checkpoint{
				File:           sqlPath,
				ScriptChecksum: script.Checksum(),
				NextIndex:      stmt.Index() + 1,
				Stats:          stats,
			})
			if cerr != nil {
				return fmt.Errorf("save checkpoint: %w", cerr)
			}
		}
	}
	return nil
}

// runStatement streams one statement's batches into one output file. The
// sink opens lazily on the first batch, so a statement yielding no rows
// produces no file (mirrored by a log warning). The connection is
// committed after the statement so DML in a file takes effect even
// without an explicit transaction scope.
func (r *Runner) runStatement(ctx context.Context, conn Conn, stmt Statement, outPath string, pageSize, rowLimit int, stats *Stats, logger *slog.Logger) (err error) {
	logger = logger.With("statement", stmt.LogName(), "index", stmt.Index())

	var out sink.Sink
	defer func() {
		if out != nil {
			if cerr := out.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		if cerr := conn.Commit(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	reportEvery := int64(r.resolveReportInterval())
	rows := int64(0)

	for batch, berr := range StatementBatches(ctx, conn, stmt, nil, pageSize, rowLimit) {
		if berr != nil {
			return berr
		}
		if out == nil {
			out, err = sink.Open(r.format, outPath, r.sinkOpts...)
			if err != nil {
				return err
			}
		}
		page := make([][]any, len(batch.Rows))
		for i, row := range batch.Rows {
			page[i] = row
		}
		if werr := out.WriteBatch(batch.Columns, page); werr != nil {
			return werr
		}

		stats.incBatches(1)
		newRows := stats.incRows(int64(len(batch.Rows)))
		prevRows := newRows - int64(len(batch.Rows))
		if r.progress != nil && newRows/reportEvery > prevRows/reportEvery {
			r.progress.OnProgress(ctx, stats)
		}
		rows += int64(len(batch.Rows))
	}

	if out == nil {
		logger.Warn("statement produced no rows; no output file written")
		return nil
	}
	logger.Debug("statement complete", "rows", rows)
	return nil
}

// RunDir executes every regular file in dir through RunFile, writing
// each file's outputs under outDir using the source file name without
// its extension as the prefix. Files run in lexical order; with
// WithFileWorkers(n > 1) up to n files run concurrently, each on its own
// connection. Statements within one file always run sequentially.
//
// The first file error cancels the remaining files; the returned Stats
// aggregate every file that ran.
func (r *Runner) RunDir(ctx context.Context, dir, outDir string) (*Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sql dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	total := &Stats{}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.resolveFileWorkers())

	for _, name := range files {
		group.Go(func() error {
			prefix := strings.TrimSuffix(name, filepath.Ext(name))
			stats, ferr := r.RunFile(groupCtx, filepath.Join(dir, name), filepath.Join(outDir, prefix))
			total.merge(stats)
			return ferr
		})
	}

	if err := group.Wait(); err != nil {
		return total, err
	}
	return total, nil
}
