package normalize

import (
	"context"
	"fmt"

	"ratequote-backend/internal/browser"
	"ratequote-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// RowsFromHTML scrapes the first table with a header row and at least one
// data row out of a saved results page.
func RowsFromHTML(ctx context.Context, body []byte, maxRows int) ([]browser.RawRow, error) {
	doc, err := htmlutil.ParseDocument(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("normalize: parse html: %w", err)
	}

	var rows []browser.RawRow
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		trs := table.Find("tr")
		if trs.Length() < 2 {
			return true
		}

		var headers []string
		trs.First().Find("th, td").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, htmlutil.SelectionText(th))
		})

		trs.Slice(1, goquery.ToEnd).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
			if maxRows > 0 && len(rows) >= maxRows {
				return false
			}
			var row browser.RawRow
			tr.Find("td").EachWithBreak(func(i int, td *goquery.Selection) bool {
				if i >= len(headers) {
					return false
				}
				header := headers[i]
				if header == "" {
					header = fmt.Sprintf("col%d", i)
				}
				row = append(row, browser.Cell{Header: header, Text: htmlutil.SelectionText(td)})
				return true
			})
			if len(row) > 0 {
				rows = append(rows, row)
			}
			return true
		})
		return len(rows) == 0
	})
	return rows, nil
}
