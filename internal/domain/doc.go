// Package domain contains the core types of inspectgw.
//
// It has no dependencies on HTTP, SQL drivers or logging and holds only the
// rules the rest of the service builds on.
//
// # Types
//
//   - [SearchRequest]: a date range for the inspection search
//   - [Record]: one joined inspection row, keyed by lower-cased column name
//     in projection order
//   - [ValidationError]: the request is missing a required field
//   - [StorageError]: the database failed during connect, execute or fetch
package domain
