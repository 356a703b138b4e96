// Package driven defines the outbound interfaces the search core depends
// on: providers, the application indexer, icon extraction, persistent
// stores, and process execution. Adapters under internal/adapters and
// internal/providers implement them.
package driven
