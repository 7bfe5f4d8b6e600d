package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// documentPart is the zip entry holding the document body.
const documentPart = "word/document.xml"

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{"docx"}
}

// Normalise extracts the text of every body paragraph, one line per paragraph.
func (n *Normaliser) Normalise(_ context.Context, path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", domain.ErrInvalidInput, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open %s: %w", documentPart, err)
		}
		defer rc.Close()

		return extractBodyText(rc)
	}

	return "", fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, documentPart)
}

// paragraphChild is a run or a hyperlink inside a paragraph.
type paragraphChild struct {
	XMLName xml.Name
	Text    []textElement `xml:"t"`
	Runs    []run         `xml:"r"`
}

type paragraph struct {
	Children []paragraphChild `xml:",any"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// extractBodyText streams the document XML. Only paragraphs that are
// direct children of the body are read; tables and other blocks are skipped.
func extractBodyText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: document has no body", domain.ErrInvalidInput)
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "body" {
			return readBody(dec)
		}
	}
}

func readBody(dec *xml.Decoder) (string, error) {
	var out strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "p" {
				if err := dec.Skip(); err != nil {
					return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
				}
				continue
			}
			var para paragraph
			if err := dec.DecodeElement(&para, &t); err != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			writeParagraph(&out, para)
		case xml.EndElement:
			return out.String(), nil
		}
	}
}

func writeParagraph(out *strings.Builder, para paragraph) {
	for _, child := range para.Children {
		switch child.XMLName.Local {
		case "r":
			writeText(out, child.Text)
		case "hyperlink":
			for _, r := range child.Runs {
				writeText(out, r.Text)
			}
		}
	}
	out.WriteByte('\n')
}

func writeText(out *strings.Builder, texts []textElement) {
	for _, t := range texts {
		out.WriteString(t.Content)
	}
}
