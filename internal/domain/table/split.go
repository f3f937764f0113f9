package table

import "strings"

// SplitCompoundField splits "made-attempted" style cells into their two halves
func SplitCompoundField(token, delimiter string) (string, string, error) {
	malformed := &CompoundFieldMalformed{Token: token, Delimiter: delimiter}
	if delimiter == "" || strings.Count(token, delimiter) != 1 {
		return "", "", malformed
	}

	left, right, _ := strings.Cut(token, delimiter)
	left = strings.TrimSpace(left)
	right = strings.TrimSpace(right)
	if left == "" || right == "" {
		return "", "", malformed
	}
	return left, right, nil
}

// splitRow expands the compound cells of one reshaped row into the final column layout
func splitRow(row []string, schema *Schema, index int) ([]string, error) {
	out := make([]string, 0, len(row)+schema.splitCount())
	for i, col := range schema.Columns {
		cell := CleanSpace(row[i])
		if col.Split == nil {
			out = append(out, cell)
			continue
		}

		left, right, err := SplitCompoundField(cell, col.Split.Delimiter)
		if err != nil {
			return nil, &CompoundFieldMalformed{
				Row:       index,
				Column:    col.Name,
				Token:     cell,
				Delimiter: col.Split.Delimiter,
			}
		}
		out = append(out, left, right)
	}
	return out, nil
}
