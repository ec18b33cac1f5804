// Package backend provides the DJStage trending API server.

// The server entry point lives in cmd/server. The API is organized into
// subpackages:

// - internal/handlers: HTTP request handlers and route registration
// - internal/trending: scoring, registry, engagement ledger and ranking
// - internal/content: content reference resolution (events, mixes)
// - internal/models: data models and database schemas
// - internal/database: database connection, migrations and indexes
// - internal/cache: Redis cache for ranking list responses
// - internal/auth: admin JWT verification middleware
// - internal/middleware: request id, request logging, metrics
// - internal/metrics: Prometheus collectors
// - internal/errors: typed API errors
// - internal/logger: structured logging
// - internal/util: response envelopes and parsing helpers

// See the individual package documentation for detailed reference.
package backend
