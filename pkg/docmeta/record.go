// Package docmeta parses the judicial-metadata XML documents: the sitemap
// index, per-batch sitemaps, and the metadata record exposed for each
// judgement. A record carries typed, language-tagged reference entries and
// language-tagged abstracts:
//
//	<record>
//	  <identifier>ECLI:BE:CASS:2020:ARR.0123</identifier>
//	  <court>CASS</court>
//	  <date>2020-03-12</date>
//	  <url>https://…/content/ECLI:BE:CASS:2020:ARR.0123/FR</url>
//	  <reference type="citation" lang="FR">Loi du 10-10-1967 - Art. 14 - 23</reference>
//	  <reference type="link" lang="FR">https://…/eli/loi/1967/10/10/1967101052/justel</reference>
//	  <reference type="otherlaw" lang="FR">https://…/cgi_loi/loi_a1.pl?…</reference>
//	  <reference type="docket">C.19.0123.F</reference>
//	  <abstract lang="FR">…</abstract>
//	  <abstract lang="NL">…</abstract>
//	</record>
//
// Reference resolution (law grouping, identifier binding, reconciliation
// queueing) lives in resolve.go.
package docmeta

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/coolbeans/juricite/pkg/textnorm"
)

// ReferenceKind classifies a reference entry of a metadata record.
type ReferenceKind int

const (
	// RefCitation is a free-text citation line.
	RefCitation ReferenceKind = iota

	// RefIdentifier is an explicit identifier entry (an ELI link).
	RefIdentifier

	// RefOtherLaw is a bare-URL reference to another law text (legacy form).
	RefOtherLaw

	// RefDocket is a role/case-number marker.
	RefDocket
)

// ReferenceEntry is one typed reference entry, in document order.
type ReferenceEntry struct {
	Kind ReferenceKind
	Lang string
	Text string
}

// Record is one parsed metadata record.
type Record struct {
	ID          string
	Court       string
	Date        string
	SourceURL   string
	PageURL     string
	References  []ReferenceEntry
	AbstractsFR []string
	AbstractsNL []string
}

// ParseSitemapIndex extracts the batch (sitemap) URLs from a sitemap index
// document, in document order.
func ParseSitemapIndex(document []byte) ([]string, error) {
	return parseLocs(document, "//sitemap/loc")
}

// ParseSitemap extracts the record (item) URLs from a batch sitemap, in
// document order.
func ParseSitemap(document []byte) ([]string, error) {
	return parseLocs(document, "//url/loc")
}

func parseLocs(document []byte, locPath string) ([]string, error) {
	root, err := xmlquery.Parse(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap document: %w", err)
	}

	var locations []string
	for _, locNode := range xmlquery.Find(root, locPath) {
		location := strings.TrimSpace(locNode.InnerText())
		if location != "" {
			locations = append(locations, location)
		}
	}
	return locations, nil
}

// ParseRecord parses one metadata record document. sourceURL is the URL the
// record was fetched from and becomes the record's canonical source URL.
func ParseRecord(document []byte, sourceURL string) (*Record, error) {
	root, err := xmlquery.Parse(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata record: %w", err)
	}

	recordNode := xmlquery.FindOne(root, "//record")
	if recordNode == nil {
		return nil, fmt.Errorf("document has no record element")
	}

	parsedRecord := &Record{SourceURL: sourceURL}

	if idNode := xmlquery.FindOne(recordNode, "identifier"); idNode != nil {
		parsedRecord.ID = strings.TrimSpace(idNode.InnerText())
	}
	if courtNode := xmlquery.FindOne(recordNode, "court"); courtNode != nil {
		parsedRecord.Court = strings.TrimSpace(courtNode.InnerText())
	}
	if dateNode := xmlquery.FindOne(recordNode, "date"); dateNode != nil {
		parsedRecord.Date = strings.TrimSpace(dateNode.InnerText())
	}
	if urlNode := xmlquery.FindOne(recordNode, "url"); urlNode != nil {
		parsedRecord.PageURL = strings.TrimSpace(urlNode.InnerText())
	}
	if parsedRecord.ID == "" {
		return nil, fmt.Errorf("record at %s has no identifier", sourceURL)
	}

	for _, refNode := range xmlquery.Find(recordNode, "reference") {
		entryText := textnorm.Collapse(refNode.InnerText())
		if entryText == "" {
			continue
		}
		parsedRecord.References = append(parsedRecord.References, ReferenceEntry{
			Kind: referenceKind(refNode.SelectAttr("type")),
			Lang: strings.ToUpper(refNode.SelectAttr("lang")),
			Text: entryText,
		})
	}

	for _, abstractNode := range xmlquery.Find(recordNode, "abstract") {
		abstractText := textnorm.Collapse(abstractNode.InnerText())
		if abstractText == "" {
			continue
		}
		switch strings.ToUpper(abstractNode.SelectAttr("lang")) {
		case "NL":
			parsedRecord.AbstractsNL = append(parsedRecord.AbstractsNL, abstractText)
		default:
			parsedRecord.AbstractsFR = append(parsedRecord.AbstractsFR, abstractText)
		}
	}

	return parsedRecord, nil
}

// referenceKind maps a record's type attribute onto a ReferenceKind.
// Unrecognized types are treated as citation text so nothing is silently
// dropped: the pattern cascade surfaces them to the error log instead.
func referenceKind(typeAttr string) ReferenceKind {
	switch strings.ToLower(typeAttr) {
	case "link", "eli":
		return RefIdentifier
	case "otherlaw", "other-law", "url":
		return RefOtherLaw
	case "docket", "rolenumber", "role-number":
		return RefDocket
	default:
		return RefCitation
	}
}
