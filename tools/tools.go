//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// These tools are installed globally via `go install` and are not tracked in go.mod
// since they are development tools, not runtime dependencies.
package tools

// Development tools (install via `go install`):
//
// Air - Live reload for Go apps (run with DEV=true so templates load from disk)
//   Install: go install github.com/air-verse/air@v1.63.0
//   Version: v1.63.0 (pinned 2025-01-01)
//   Docs: https://github.com/air-verse/air
//
// mockgen - Regenerates internal/mocks (invoked by go generate, no install needed)
//   Run: go generate ./internal/mocks
//   Version: v0.6.0 (matches go.uber.org/mock in go.mod)
//
// Playwright driver and Chromium - Required by the e2e browser tests
//   Install: go run github.com/playwright-community/playwright-go/cmd/playwright@v0.5200.1 install --with-deps chromium
//   Run: go test -tags e2e ./internal/bootstrap
