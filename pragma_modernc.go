// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"fmt"
	"strings"
	"time"
)

// pragma represents a SQLite pragma setting.
type pragma struct {
	name  string
	value string
}

// memoryPragmas are used for private in-memory databases.
var memoryPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "journal_mode", value: "MEMORY"},
	{name: "synchronous", value: "OFF"},
	{name: "temp_store", value: "MEMORY"},
}

// persistentPragmas are used for database files. Temp virtual tables live in
// the temp schema, so temp_store stays in memory here too.
var persistentPragmas = []pragma{
	{name: "foreign_keys", value: "ON"},
	{name: "journal_mode", value: "WAL"},
	{name: "synchronous", value: "NORMAL"},
	{name: "temp_store", value: "MEMORY"},
}

// withBusyTimeout prepends busy_timeout to a pragma list.
func withBusyTimeout(pragmas []pragma, d time.Duration) []pragma {
	out := make([]pragma, 0, len(pragmas)+1)
	out = append(out, pragma{name: "busy_timeout", value: fmt.Sprint(d.Milliseconds())})
	return append(out, pragmas...)
}

// buildDSN constructs a DSN for modernc.org/sqlite.
// modernc uses the syntax: file:path?_pragma=name(value)&_pragma=name2(value2)
func buildDSN(path string, pragmas []pragma) string {
	var sb strings.Builder

	if path == ":memory:" {
		sb.WriteString("file::memory:")
	} else {
		sb.WriteString("file:")
		sb.WriteString(path)
	}

	for i, p := range pragmas {
		if i > 0 {
			sb.WriteString("&")
		} else {
			sb.WriteString("?")
		}
		fmt.Fprintf(&sb, "_pragma=%s(%s)", p.name, p.value)
	}

	return sb.String()
}
