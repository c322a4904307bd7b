// Package server provides the HTTP server of the job system.
//
// The server uses the Gin web framework. In development mode (ServerMode =
// "dev") Gin runs in debug mode; in production mode (ServerMode = "prod") it
// runs in release mode.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                         HTTP Server :8000                     │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  Logger   (ginzap.Ginzap, "http" logger)                │  │
//	│  │  Recovery (ginzap.RecoveryWithZap, 500 on panic)        │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│  /metrics    Prometheus exposition (when a gatherer is set)   │
//	│  /health     liveness                                         │
//	│  /api/v1     handlers registered via callback                 │
//	│  *           404 JSON error                                   │
//	└───────────────────────────────────────────────────────────────┘
//
// # Server Lifecycle
//
// Creation:
//
//	srv, err := server.NewServer(cfg, registry, func(router *gin.RouterGroup) {
//	    handlers.RegisterHandlers(router, h)
//	})
//
// Starting:
//
//	// Blocks until error or shutdown
//	err := srv.Start(ctx)
//
// Stopping:
//
//	srv.Stop(ctx)
//
// Stop performs a graceful shutdown, waiting for in-flight requests to
// complete. A pending POST /api/v1/pool/wait is released by its own timeout
// or by the shutdown context, whichever comes first.
package server
