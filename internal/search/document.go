package search

import (
	"io"
	"strings"
)

// FieldFlags selects how a field is handled by AddDocument.
type FieldFlags uint8

const (
	// FieldStored keeps the verbatim value for FieldValue.
	FieldStored FieldFlags = 1 << iota
	// FieldAnalyzed runs the value through the analyzer. Without it the
	// whole value is indexed as a single literal token.
	FieldAnalyzed
)

// Has reports whether every flag in f2 is set.
func (f FieldFlags) Has(f2 FieldFlags) bool {
	return f&f2 == f2
}

// Field is a named piece of document content. Its source is consumed once.
type Field struct {
	Name  string
	Flags FieldFlags

	source io.Reader
}

// StringField returns a field backed by an in-memory value.
func StringField(name, value string, flags FieldFlags) Field {
	return Field{Name: name, Flags: flags, source: strings.NewReader(value)}
}

// ReaderField returns a field whose content is read from r when the
// document is added. The caller keeps ownership of r.
func ReaderField(name string, r io.Reader, flags FieldFlags) Field {
	return Field{Name: name, Flags: flags, source: r}
}

// Document is an ordered list of fields.
type Document struct {
	Fields []Field
}

// NewDocument returns a document holding fields.
func NewDocument(fields ...Field) *Document {
	return &Document{Fields: fields}
}

// Add appends a field.
func (d *Document) Add(f Field) {
	d.Fields = append(d.Fields, f)
}
