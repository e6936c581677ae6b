// Package ports defines the interfaces that connect the query gateway to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [SessionOpener]: opens one database session per search
//   - [Session]: a scoped connection that runs a query and is then released
//   - [Rows]: the cursor returned by a session query
//   - [SearchObserver]: receives session and search outcome signals (metrics)
//
// The application layer (internal/app) depends only on these interfaces.
// internal/adapters/sqlstore implements the session ports on database/sql,
// and internal/adapters/http implements SearchObserver with Prometheus.
package ports
