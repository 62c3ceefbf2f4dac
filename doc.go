// Package backend provides the Tendo API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Task, event, settings, and prompt data models
// - internal/store: Flat-file JSON persistence with external-edit reload
// - internal/tasks: Task lifecycle, WIP limit, and completion celebrations
// - internal/prompting: Proactive prompt scheduler and daily digest
// - internal/analytics: On-demand statistics over the event log
// - internal/events: Live event hub feeding SSE and WebSocket clients
// - internal/middleware: HTTP middleware (rate limiting, etc.)
// - internal/seed: Fake data generation for dev and test environments

// See the individual package documentation for detailed API reference.
package backend
