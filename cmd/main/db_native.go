//go:build !cgo_sqlite

package main

import (
	_ "modernc.org/sqlite"
)

// dbDriver is the database/sql driver for the label database.
const dbDriver = "sqlite"
