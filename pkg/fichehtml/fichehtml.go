// Package fichehtml parses the detailed judgement HTML page. The page holds
// labeled "fiche" sections, each pairing one free-text abstract with a
// description cell of <br>-separated citation lines:
//
//	<div class="fiche">
//	  <div class="abstract">…</div>
//	  <table>
//	    <tr>
//	      <th>Bases légales</th>
//	      <td>Loi du 10-10-1967 - Art. 14 - 23
//	          <a href="https://…/eli/loi/1967/10/10/1967101052/justel">…</a>
//	          <br>Art. 23</td>
//	    </tr>
//	  </table>
//	</div>
//
// Unlike the metadata XML, HTML lines co-locate their identifier as a
// hyperlink on the same line, so every line is parsed independently: no
// cross-line law grouping happens here.
package fichehtml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/coolbeans/juricite/pkg/cite"
	"github.com/coolbeans/juricite/pkg/eli"
	"github.com/coolbeans/juricite/pkg/textnorm"
	"github.com/coolbeans/juricite/pkg/types"
)

// Language-specific labels of the legal-bases description row.
var basisLabels = []string{
	"Bases légales",
	"Base légale",
	"Wettelijke grondslagen",
	"Wettelijke grondslag",
}

// Page is the parsed judgement page.
type Page struct {
	// Fiches holds the fiche cards in document order.
	Fiches []types.Fiche

	// Failed holds citation lines no pattern recognized, for the error log.
	Failed []string
}

// ParseJudgementPage extracts the fiche cards from a judgement HTML page.
// lang is the page language ("FR" or "NL") and decides which raw-text side
// each citation's text lands on.
func ParseJudgementPage(document []byte, lang string) (*Page, error) {
	parsedDocument, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("failed to parse judgement page: %w", err)
	}

	page := &Page{}
	dutch := strings.EqualFold(lang, "NL")

	parsedDocument.Find("div.fiche").Each(func(_ int, ficheSelection *goquery.Selection) {
		fiche := types.Fiche{
			AbstractText: textnorm.Collapse(ficheSelection.Find(".abstract").First().Text()),
		}

		basisCell := findBasisCell(ficheSelection)
		if basisCell != nil {
			for _, citationLine := range splitLines(basisCell) {
				parseCitationLine(citationLine, dutch, &fiche, page)
			}
		}

		page.Fiches = append(page.Fiches, fiche)
	})

	return page, nil
}

// findBasisCell locates the td of the language-labeled legal-bases row.
func findBasisCell(ficheSelection *goquery.Selection) *goquery.Selection {
	var basisCell *goquery.Selection
	ficheSelection.Find("tr").EachWithBreak(func(_ int, rowSelection *goquery.Selection) bool {
		label := textnorm.Collapse(rowSelection.Find("th").First().Text())
		for _, knownLabel := range basisLabels {
			if strings.EqualFold(label, knownLabel) {
				basisCell = rowSelection.Find("td").First()
				return false
			}
		}
		return true
	})
	return basisCell
}

// citationLine is one <br>-separated line: its visible text plus any
// hyperlink targets found on the line.
type citationLine struct {
	text  string
	links []string
}

// splitLines walks the cell's child nodes, splitting on <br> and collecting
// per-line anchor targets.
func splitLines(cellSelection *goquery.Selection) []citationLine {
	var (
		lines   []citationLine
		current citationLine
	)

	flush := func() {
		current.text = textnorm.Collapse(current.text)
		if current.text != "" || len(current.links) > 0 {
			lines = append(lines, current)
		}
		current = citationLine{}
	}

	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			switch {
			case child.Type == html.ElementNode && child.Data == "br":
				flush()
			case child.Type == html.ElementNode && child.Data == "a":
				for _, attribute := range child.Attr {
					if attribute.Key == "href" && attribute.Val != "" {
						current.links = append(current.links, attribute.Val)
					}
				}
				walk(child)
			case child.Type == html.TextNode:
				current.text += " " + child.Data
			default:
				walk(child)
			}
		}
	}

	for _, cellNode := range cellSelection.Nodes {
		walk(cellNode)
	}
	flush()

	return lines
}

// parseCitationLine runs one line through the pattern cascade and resolves
// its identifier from the line's own hyperlinks: an ELI link wins, a legacy
// link is canonicalized as fallback.
func parseCitationLine(line citationLine, dutch bool, fiche *types.Fiche, page *Page) {
	match := cite.ParseLine(line.text)

	switch match.Kind {
	case cite.MatchArticleRef, cite.MatchGeneralRef:
		identifier, resolved := lineIdentifier(line.links)
		for _, article := range match.Articles {
			if resolved {
				basis := types.LegalBasis{Article: article, Identifier: identifier}
				setText(&basis.TextFR, &basis.TextNL, dutch, match.Raw)
				fiche.Bases = append(fiche.Bases, basis)
				continue
			}
			articleCopy := article
			lawKey := match.LawKey
			if lawKey == "" {
				lawKey = match.Raw
			}
			unresolved := types.UnresolvedBasis{Article: &articleCopy, RawLawKey: lawKey}
			setText(&unresolved.TextFR, &unresolved.TextNL, dutch, match.Raw)
			fiche.Unresolved = append(fiche.Unresolved, unresolved)
		}

	case cite.MatchPrinciple:
		unresolved := types.UnresolvedBasis{Article: nil, RawLawKey: match.LawKey}
		setText(&unresolved.TextFR, &unresolved.TextNL, dutch, match.Raw)
		fiche.Unresolved = append(fiche.Unresolved, unresolved)

	default:
		if match.Raw != "" {
			page.Failed = append(page.Failed, match.Raw)
		}
	}
}

// setText routes raw citation text to the FR or NL side.
func setText(textFR, textNL *string, dutch bool, raw string) {
	if dutch {
		*textNL = raw
	} else {
		*textFR = raw
	}
}

// lineIdentifier resolves the canonical identifier from a line's hyperlinks.
func lineIdentifier(links []string) (string, bool) {
	for _, link := range links {
		if eli.IsELI(link) {
			return eli.Normalize(link), true
		}
	}
	for _, link := range links {
		if canonical, ok := eli.CanonicalizeLegacy(link); ok {
			return canonical, true
		}
	}
	return "", false
}
