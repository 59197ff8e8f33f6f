// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package xmp

import (
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Fields holds the descriptive metadata most workflows care about,
// pulled out of the RDF tree. Zero values mean the document does not
// carry the field.
type Fields struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Creator     string   `json:"creator,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Rights      string   `json:"rights,omitempty"`
}

// Empty reports whether no field was found.
func (f Fields) Empty() bool {
	return f.Title == "" && f.Description == "" && f.Creator == "" &&
		len(f.Keywords) == 0 && f.Rights == ""
}

// ParseFields extracts common descriptive fields from an XMP
// document. It accepts both layouts the toolkit encounters: embedded
// packets (dc:title holding an rdf:Alt of rdf:li items) and the
// tool's flat RDF/XML export (XMP-dc:Title holding plain text, one
// element per repeated value). Unknown elements are ignored, so a
// partially recognized document still yields its known fields.
func ParseFields(document string) (Fields, error) {
	decoder := xml.NewDecoder(strings.NewReader(document))

	var fields Fields
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Fields{}, fmt.Errorf("parsing xmp document: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		// rdf:Description is the RDF container, not the dc field of
		// the same local name.
		if strings.Contains(start.Name.Space, "rdf-syntax") {
			continue
		}

		switch strings.ToLower(start.Name.Local) {
		case "title":
			items, err := collectItems(decoder, start)
			if err != nil {
				return Fields{}, err
			}
			if fields.Title == "" && len(items) > 0 {
				fields.Title = items[0]
			}
		case "description":
			items, err := collectItems(decoder, start)
			if err != nil {
				return Fields{}, err
			}
			if fields.Description == "" && len(items) > 0 {
				fields.Description = items[0]
			}
		case "creator":
			items, err := collectItems(decoder, start)
			if err != nil {
				return Fields{}, err
			}
			if fields.Creator == "" && len(items) > 0 {
				fields.Creator = strings.Join(items, ", ")
			}
		case "subject", "keywords":
			items, err := collectItems(decoder, start)
			if err != nil {
				return Fields{}, err
			}
			fields.Keywords = appendUnique(fields.Keywords, items)
		case "rights", "usageterms":
			items, err := collectItems(decoder, start)
			if err != nil {
				return Fields{}, err
			}
			if fields.Rights == "" && len(items) > 0 {
				fields.Rights = items[0]
			}
		}
	}
	return fields, nil
}

// collectItems reads the element's content up to its end tag. A
// container value (rdf:Alt, rdf:Seq, rdf:Bag) yields one item per
// rdf:li; a plain-text value yields a single item. Empty items are
// dropped.
func collectItems(decoder *xml.Decoder, start xml.StartElement) ([]string, error) {
	var items []string
	var current strings.Builder
	inItem := false

	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing %s element: %w", start.Name.Local, err)
		}
		switch element := token.(type) {
		case xml.StartElement:
			depth++
			if element.Name.Local == "li" {
				inItem = true
				current.Reset()
			}
		case xml.EndElement:
			depth--
			if element.Name.Local == "li" && inItem {
				if text := strings.TrimSpace(current.String()); text != "" {
					items = append(items, text)
				}
				inItem = false
			}
		case xml.CharData:
			current.Write(element)
		}
	}

	if len(items) == 0 {
		if text := strings.TrimSpace(current.String()); text != "" {
			items = append(items, text)
		}
	}
	return items, nil
}

func appendUnique(list, items []string) []string {
	for _, item := range items {
		if !slices.Contains(list, item) {
			list = append(list, item)
		}
	}
	return list
}
