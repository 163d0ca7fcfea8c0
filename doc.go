// Package sqlexec executes SQL script files against a database backend
// and streams their results to output files, one statement at a time and
// one bounded page of rows at a time.
//
// A SQL file is parsed into a Script of statements split on ';' outside
// string literals and comments. Block comments immediately preceding a
// statement may carry directives that tune that statement's execution:
//
//	/* NAME daily_orders */
//	/* PAGINATE SIZE 500 */
//	/* ROW LIMIT 100000 */
//	SELECT * FROM orders WHERE created >= :start;
//
// The engine pulls rows through a streaming cursor in pages, so result
// sets of any size run in constant client memory. Iteration is lazy and
// pull-based via iter.Seq2:
//
//	script, err := sqlexec.Parse(text)
//	stmt, err := script.ByName("daily_orders")
//	for batch, err := range sqlexec.StatementBatches(ctx, conn, stmt, nil, 1000, -1) {
//	    ...
//	}
//
// The Runner ties everything together: it parses a file, executes every
// statement in order, writes each statement's batches to its own CSV,
// TXT or XLSX output file, and recovers from transient connection loss
// by re-opening the connection and redoing (or resuming, with
// checkpoints enabled) the file:
//
//	runner := sqlexec.NewRunner(postgres.NewConnector(params)).
//	    WithFormat(sink.CSV).
//	    WithRetryPolicy(sqlexec.RetryPolicy{Tries: 5, Delay: time.Second, Backoff: 2})
//	stats, err := runner.RunFile(ctx, "queries/daily.sql", "out/daily")
//
// Backend adapters live in the postgres, oracle and mysql subpackages;
// connection parameters load from an INI file through envconf. Anything
// that implements Connector, Conn and Cursor can serve as a backend.
package sqlexec
