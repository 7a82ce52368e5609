// Package infra contains the technical adapters: transport clients,
// metrics exporters, the spreadsheet reader and the Sentry monitor.
// These packages depend only on the interfaces defined under core.
package infra
