// Package domain defines the core entities of the ingestion pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Root: A document's provenance and its canonical string encoding
//   - DocumentID: The content-addressed identity of a document
//   - Document: A searchable document as stored by the search backend
//   - Message: A searchable chat message
//   - Event: An item on the ingestion stream
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
