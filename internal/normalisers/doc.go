// Package normalisers turns files on disk into plain text for indexing.
//
// Each format lives in its own subpackage implementing driven.Normaliser.
// The Registry in this package dispatches on file extension and is the
// driven.Extractor used by the file watcher and the git synchronizer.
package normalisers
