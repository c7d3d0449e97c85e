package console

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/riskibarqy/ballstats/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

var TopScorerHeaders = []string{"First Name", "Last Name", "Avg Points"}

// TopScorerRows projects report rows to table cells.
func TopScorerRows(rows []usecase.TopScorer) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, []string{row.FirstName, row.LastName, FormatPoints(row.Points)})
	}
	return out
}

// FormatPoints prints the shortest decimal form, e.g. 27.3 or 30.
func FormatPoints(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// RenderTable writes an ASCII box table:
//
//	+------------+-----------+
//	| First Name | Last Name |
//	+------------+-----------+
//	| James      | Harden    |
//	+------------+-----------+
//
// With no rows only the header block is written. Rows shorter than headers
// are padded with empty cells; extra cells are ignored.
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	widths := make([]int, len(headers))
	for idx, header := range headers {
		widths[idx] = utf8.RuneCountInString(header)
	}
	for _, row := range rows {
		for idx := 0; idx < len(headers) && idx < len(row); idx++ {
			widths[idx] = max(widths[idx], utf8.RuneCountInString(row[idx]))
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	border := borderLine(widths)
	_, _ = buf.WriteString(border)
	writeRow(buf, widths, headers)
	_, _ = buf.WriteString(border)
	if len(rows) > 0 {
		for _, row := range rows {
			writeRow(buf, widths, row)
		}
		_, _ = buf.WriteString(border)
	}

	_, err := w.Write(buf.B)
	return err
}

func borderLine(widths []int) string {
	var sb strings.Builder
	sb.WriteByte('+')
	for _, width := range widths {
		sb.WriteString(strings.Repeat("-", width+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func writeRow(buf *bytebufferpool.ByteBuffer, widths []int, cells []string) {
	_ = buf.WriteByte('|')
	for idx, width := range widths {
		cell := ""
		if idx < len(cells) {
			cell = cells[idx]
		}
		_ = buf.WriteByte(' ')
		_, _ = buf.WriteString(cell)
		_, _ = buf.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(cell)))
		_, _ = buf.WriteString(" |")
	}
	_ = buf.WriteByte('\n')
}
