// Package testutil provides testing utilities for hestia
package testutil

// TableTest is one row of a table-driven test.
type TableTest[T any] struct {
	Name        string
	Input       T
	Expected    any
	ExpectError bool
	ErrorMsg    string
}
