package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	maxColWidth = 30
	nullMarker  = "NULL"
)

// renderedTable is the display form of a result set: formatted header
// and rows plus the grid text they were composed into. Recomputed on
// every render cycle, never stored across events.
type renderedTable struct {
	header []string
	rows   [][]string
	grid   string
	lines  int
}

// render formats rs into a single scrollable grid. An empty set
// renders to an empty grid, not an error; a cell that cannot be
// formatted is an error, never silent placeholder output.
func render(rs *resultSet) (renderedTable, error) {
	var rt renderedTable
	if rs.empty() {
		return rt, nil
	}

	schema := rs.schema()
	rt.header = make([]string, len(schema))
	for i, c := range schema {
		rt.header[i] = c.name
	}

	for _, b := range rs.batches {
		for _, row := range b.rows {
			out := make([]string, len(row))
			for i, c := range row {
				s, err := formatCell(c)
				if err != nil {
					return renderedTable{}, fmt.Errorf("column %q: %w", schema[i].name, err)
				}
				out[i] = s
			}
			rt.rows = append(rt.rows, out)
		}
	}

	rt.grid = buildGrid(rt.header, rt.rows, columnAlignment(rs))
	rt.lines = strings.Count(rt.grid, "\n") + 1
	return rt, nil
}

// columnAlignment right-aligns a column when its first non-null value
// is numeric.
func columnAlignment(rs *resultSet) []bool {
	align := make([]bool, len(rs.schema()))
	for ci := range align {
		for _, b := range rs.batches {
			found := false
			for _, row := range b.rows {
				if row[ci].kind == kindNull {
					continue
				}
				align[ci] = rightAligned(row[ci].kind)
				found = true
				break
			}
			if found {
				break
			}
		}
	}
	return align
}

// formatCell renders one typed value deterministically, one arm per
// kind.
func formatCell(c cell) (string, error) {
	switch c.kind {
	case kindNull:
		return nullMarker, nil
	case kindInt:
		return strconv.FormatInt(c.i, 10), nil
	case kindFloat:
		return strconv.FormatFloat(c.f, 'f', -1, 64), nil
	case kindText:
		return c.s, nil
	case kindBool:
		return strconv.FormatBool(c.b), nil
	case kindBlob:
		return "x'" + hex.EncodeToString(c.raw) + "'", nil
	default:
		return "", fmt.Errorf("unformattable cell value (%s)", c.s)
	}
}

func rightAligned(k cellKind) bool {
	return k == kindInt || k == kindFloat
}

func buildGrid(header []string, rows [][]string, align []bool) string {
	widths := colWidths(header, rows)

	var sb strings.Builder
	writeRow(&sb, header, widths, make([]bool, len(header)))
	sb.WriteString("\n")
	for ci, w := range widths {
		sb.WriteString(strings.Repeat("─", w+2))
		if ci < len(widths)-1 {
			sb.WriteString("┼")
		}
	}
	for _, row := range rows {
		sb.WriteString("\n")
		writeRow(&sb, row, widths, align)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string, widths []int, align []bool) {
	for ci, s := range cells {
		w := widths[ci]
		sb.WriteString(" ")
		sb.WriteString(pad(s, w, align[ci]))
		sb.WriteString(" ")
		if ci < len(cells)-1 {
			sb.WriteString("│")
		}
	}
}

func pad(s string, width int, right bool) string {
	dw := runewidth.StringWidth(s)
	if dw > width {
		return runewidth.Truncate(s, width, ".")
	}
	fill := strings.Repeat(" ", width-dw)
	if right {
		return fill + s
	}
	return s + fill
}

func colWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
		if widths[i] < 4 {
			widths[i] = 4
		}
	}
	for _, row := range rows {
		for i, s := range row {
			if w := runewidth.StringWidth(s); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] > maxColWidth {
			widths[i] = maxColWidth
		}
	}
	return widths
}
