// Package postgres provides the PostgreSQL implementations of the
// internal/store interfaces and the credit ledger: query execution, error
// code mapping, and data mapping between domain entities and rows. The
// migrations subpackage holds the embedded goose schema.
package postgres