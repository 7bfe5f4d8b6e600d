package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// DocumentID is the content-addressed identifier of a document.
// It is the hex SHA-256 of the canonical root followed by the filename.
type DocumentID string

// NewDocumentID derives the ID of filename under root.
func NewDocumentID(filename string, root Root) DocumentID {
	sum := sha256.Sum256([]byte(root.String() + filename))
	return DocumentID(hex.EncodeToString(sum[:]))
}

// String returns the string representation.
func (id DocumentID) String() string {
	return string(id)
}

// Document is a searchable document as stored by the search backend.
// Values are immutable: a changed file produces a new Document with the
// same ID, which the backend treats as a replace.
type Document struct {
	// ID is the primary key in the search backend.
	ID DocumentID `json:"id"`

	// Filename is the base name of the file.
	Filename string `json:"filename"`

	// Contents is the extracted plain text.
	Contents string `json:"contents"`

	// Root is the canonical provenance string.
	Root string `json:"root"`

	// Origin is the remote URL for git-sourced documents.
	Origin string `json:"origin,omitempty"`

	// Branch is the branch name for git-sourced documents.
	Branch string `json:"branch,omitempty"`
}

// NewDocument builds a document and computes its ID.
func NewDocument(filename string, root Root, contents string) Document {
	doc := Document{
		ID:       NewDocumentID(filename, root),
		Filename: filename,
		Contents: contents,
		Root:     root.String(),
	}
	if root.Kind == RootGitHub {
		doc.Origin = root.Origin
		doc.Branch = root.Branch
	}
	return doc
}

// ParsedRoot decodes the document's provenance.
// Git documents are recognised by their origin field.
func (d Document) ParsedRoot() (Root, error) {
	root, err := ParseRoot(d.Root)
	if err != nil {
		return Root{}, err
	}
	if d.Origin != "" && root.Kind == RootFiles {
		return GitHubRoot(d.Origin, d.Branch, root.FolderPath), nil
	}
	return root, nil
}

// InvalidatedDocument signals that a document must be removed.
type InvalidatedDocument struct {
	ID DocumentID
}

// AuthorID identifies the author of a chat message.
type AuthorID uint64

// Message is a chat message as stored by the search backend.
type Message struct {
	// ID is the hex SHA-256 of the author id and message body.
	ID string `json:"id"`

	// AuthorID is the numeric chat user id.
	AuthorID AuthorID `json:"author_id"`

	// Message is the message body.
	Message string `json:"message"`
}

// NewMessage builds a message and computes its ID.
// Identical messages from the same author share an ID.
func NewMessage(author AuthorID, body string) Message {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(author))

	h := sha256.New()
	h.Write(buf[:])
	h.Write([]byte(body))

	return Message{
		ID:       hex.EncodeToString(h.Sum(nil)),
		AuthorID: author,
		Message:  body,
	}
}
