// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package vtfunc exposes Go row generators to SQLite as table-valued
// functions.
//
// A function is described once by a Descriptor: its name, its ordered
// parameters, its ordered output columns, and a factory that builds a fresh
// Producer for every scan. Once registered on a connection the function can
// be queried, joined and filtered like any table:
//
//	SELECT value FROM series(0, 10, 2);
//	SELECT n.id, s.value FROM nums AS n, series(n.id, n.id + 3) AS s;
//
// # Basic Usage
//
//	db, err := vtfunc.Open(ctx, vtfunc.Config{
//	    Path:      ":memory:",
//	    Producers: []vtfunc.Descriptor{producers.Series()},
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	rows, err := db.QueryContext(ctx, `SELECT value FROM series(?, ?)`, 1, 5)
//
// # How Parameters Are Bound
//
// Every declared parameter becomes a HIDDEN column of the virtual table.
// Function-call arguments are equality constraints on those columns, which
// lets SQLite pass literal arguments and correlated arguments from an outer
// table through the same mechanism. Parameters that are not supplied bind to
// the default declared in the Descriptor.
//
// # Producers
//
// A Producer is initialized once per scan and then asked for rows one at a
// time. Produce reports end of stream with ok == false; errors are reserved
// for failures. A failure (or panic) in producer code aborts the statement
// with an SQLite error and leaves the cursor broken: it never calls the
// producer again.
//
// # Driver Support
//
// The package is built on the virtual table API of modernc.org/sqlite (pure
// Go, no CGO). Functions are installed as temp virtual tables on a single
// connection, so a Registry must be used with a *sql.Conn or with a *sql.DB
// limited to one open connection. Open returns such a handle.
package vtfunc
