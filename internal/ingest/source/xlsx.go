package source

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smallbiznis/invoicelens/internal/ingest/extract"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet. The first row holds headers; dotted headers such as
// "vendor.name" or "lineItems.0.amount" expand into nested objects. A header level
// becomes an array only when its segments across all headers are exactly 0..n-1, so
// "totals.2024" stays an object.
func readXLSX(r io.Reader) ([]extract.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnparseable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrSourceUnparseable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnparseable, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrSourceUnparseable, sheets[0])
	}

	headers := make([]extract.Path, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = extract.ParsePath(h)
	}
	lists := listPrefixes(headers)

	out := make([]extract.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := map[string]any{}
		for i, cell := range row {
			if i >= len(headers) || len(headers[i]) == 0 {
				continue
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			assign(rec, headers[i], cell)
		}
		if len(rec) == 0 {
			continue
		}
		out = append(out, compactArrays(rec, "", lists))
	}
	return out, nil
}

// assign sets value at path, creating intermediate objects. Numeric segments create
// objects keyed by index; compactArrays turns them into arrays afterwards.
func assign(node map[string]any, path extract.Path, value string) {
	for _, seg := range path[:len(path)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[seg] = child
		}
		node = child
	}
	node[path[len(path)-1]] = value
}

// listPrefixes returns the dotted header prefixes whose children are array indexes.
func listPrefixes(headers []extract.Path) map[string]bool {
	indexes := map[string]map[int]bool{}
	named := map[string]bool{}
	for _, h := range headers {
		for i := 1; i < len(h); i++ {
			parent := h[:i].String()
			idx, err := strconv.Atoi(h[i])
			if err != nil || idx < 0 || strconv.Itoa(idx) != h[i] {
				named[parent] = true
				continue
			}
			if indexes[parent] == nil {
				indexes[parent] = map[int]bool{}
			}
			indexes[parent][idx] = true
		}
	}

	lists := map[string]bool{}
	for parent, set := range indexes {
		if named[parent] {
			continue
		}
		contiguous := true
		for i := 0; i < len(set); i++ {
			if !set[i] {
				contiguous = false
				break
			}
		}
		if contiguous {
			lists[parent] = true
		}
	}
	return lists
}

// compactArrays turns the objects at list prefixes into arrays, dropping indexes the
// row left empty.
func compactArrays(v any, prefix string, lists map[string]bool) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range m {
		childPrefix := k
		if prefix != "" {
			childPrefix = prefix + "." + k
		}
		m[k] = compactArrays(child, childPrefix, lists)
	}
	if !lists[prefix] {
		return m
	}

	last := -1
	for k := range m {
		if idx, err := strconv.Atoi(k); err == nil && idx > last {
			last = idx
		}
	}
	list := make([]any, 0, len(m))
	for i := 0; i <= last; i++ {
		if child, ok := m[strconv.Itoa(i)]; ok {
			list = append(list, child)
		}
	}
	return list
}
