package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Number of element levels between a link and the block it belongs to.
const (
	// stationBlockDepth: a > li > ul > dd > dl on the line page.
	stationBlockDepth = 4

	// stopRowDepth: a > div > td > tr on the train page.
	stopRowDepth = 3
)

// parseDocument parses a page body into a queryable document.
func parseDocument(body string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}

// eachLink calls fn for every anchor whose href starts with prefix, in
// document order. fn receives the href with the prefix removed. Iteration
// stops at the first error, which is returned.
func eachLink(doc *goquery.Document, prefix string, fn func(a *goquery.Selection, rest string) error) error {
	var err error
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, prefix) {
			return true
		}
		err = fn(a, strings.TrimPrefix(href, prefix))
		return err == nil
	})
	return err
}

// ancestor returns the element levels above sel, or an empty selection when
// the tree is not that deep.
func ancestor(sel *goquery.Selection, levels int) *goquery.Selection {
	for range levels {
		sel = sel.Parent()
		if sel.Length() == 0 {
			break
		}
	}
	return sel
}

// stationBlock returns the block holding a station name and its timetable
// links on the line page.
func stationBlock(link *goquery.Selection) (*goquery.Selection, bool) {
	block := ancestor(link, stationBlockDepth)
	return block, block.Length() > 0
}

// stationName returns the text of the first link inside the first
// definition term of block.
func stationName(block *goquery.Selection) (string, bool) {
	dt := block.Find("dt").First()
	if dt.Length() == 0 {
		return "", false
	}
	a := dt.Find("a").First()
	if a.Length() == 0 {
		return "", false
	}
	return a.Text(), true
}

// stopRow returns the table row of a station link on the train page.
func stopRow(link *goquery.Selection) (*goquery.Selection, bool) {
	row := ancestor(link, stopRowDepth)
	return row, row.Length() > 0
}

// firstCell returns the first table cell of row.
func firstCell(row *goquery.Selection) (*goquery.Selection, bool) {
	td := row.Find("td").First()
	return td, td.Length() > 0
}

// optionalAttr returns a pointer to the attribute value, or nil when the
// attribute is absent.
func optionalAttr(sel *goquery.Selection, name string) *string {
	v, ok := sel.Attr(name)
	if !ok {
		return nil
	}
	return &v
}
