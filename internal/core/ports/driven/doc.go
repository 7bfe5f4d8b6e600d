// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SearchBackend: the external full-text index (Meilisearch)
//   - Extractor: maps a file on disk to plain text
//   - CommandRunner: runs external tools (git, pdftotext)
//   - DocumentSink, GitDocumentSink, MessageSink: producer side of the ingestion queues
//   - ConfigStore: Application configuration
//   - SchedulerStore: git sync task state and history
//   - OptInStore: persisted chat opt-in set
//   - Clock: time source for rate limiting
//
// # Optional Interfaces
//
//   - RepositoryHost: remote repository listing. Only needed by `repos` commands.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
