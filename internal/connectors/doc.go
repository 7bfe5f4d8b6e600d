// Package connectors holds the producers that turn external sources into
// documents for the search index.
//
//   - filesystem: scans and watches the files folder.
//   - git: re-extracts every repository cloned in the gits folder.
//   - github: looks up and lists repositories on GitHub for cloning.
//
// Producers never talk to the search backend. They push documents into a
// driven.DocumentSink and the dispatcher applies them.
package connectors
