// Package application provides application initialization and dependency wiring.
// It encapsulates source resolution, the synthetic-data fallback decision,
// and the creation of the store, packer, handlers, routers, and HTTP server,
// keeping the main package focused on CLI parsing and orchestration.
package application
