// Package http is the HTTP transport of the inspection search.
//
// It wires a gorilla/mux router with CORS, panic recovery, request ids,
// access logging and Prometheus metrics in front of a [Searcher]. Errors
// from the searcher are mapped to JSON responses:
//
//   - *domain.ValidationError: 400 with the fixed validation message
//   - *domain.StorageError: 500 with the database message (or a redacted one)
//   - anything else: 500 "internal server error"
package http
