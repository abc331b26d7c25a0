//go:build cgo_sqlite

package main

import (
	_ "github.com/mattn/go-sqlite3"
)

// dbDriver is the database/sql driver for the label database.
const dbDriver = "sqlite3"
