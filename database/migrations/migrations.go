// Package migrations holds the schema history. Each file registers its
// migrations from init(); cmd/rigparts blank-imports the package so every
// migration is known before the CLI runs.
package migrations
