// Package inspectgw provides an embeddable HTTP server for searching
// product inspection records by date range.
//
// The server exposes POST /search, GET /healthz and GET /metrics. Each
// search opens its own database session, runs a bound-variable join of
// PRODUCT_STATE and INSPECT_STATE, and closes the session before the
// response is written.
//
// # Basic Usage
//
//	creds, err := inspectgw.LoadCredentials("oracle_config.json", "oracle")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := inspectgw.New(inspectgw.Config{ListenAddr: ":5000"},
//	    inspectgw.WithCredentials(inspectgw.NewCredentialHolder(creds)),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := srv.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Dependency Injection
//
// Tests and embedders can replace the database layer and logger:
//
//	srv, err := inspectgw.New(cfg,
//	    inspectgw.WithSessionOpener(myOpener),
//	    inspectgw.WithLogger(customLogger),
//	)
//
// # Lifecycle States
//
// A Server is in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping] or [StateCrashed]. Use [Server.Status]
// to query the current state and [WithEventHandler] to observe changes.
package inspectgw
