package table

// Reshape partitions a row-major cell stream into rows of flatColumnCount cells.
// The stream is never truncated or padded.
func Reshape(cells []string, flatColumnCount int) ([][]string, error) {
	if flatColumnCount <= 0 {
		return nil, ErrInvalidColumnCount
	}
	if len(cells)%flatColumnCount != 0 {
		return nil, &ShapeMismatch{Cells: len(cells), Columns: flatColumnCount}
	}

	rows := make([][]string, 0, len(cells)/flatColumnCount)
	for start := 0; start < len(cells); start += flatColumnCount {
		row := make([]string, flatColumnCount)
		copy(row, cells[start:start+flatColumnCount])
		rows = append(rows, row)
	}
	return rows, nil
}

// CheckRows verifies a cell stream against a row count reported by extraction
func CheckRows(cells []string, flatColumnCount, rows int) error {
	if flatColumnCount <= 0 {
		return ErrInvalidColumnCount
	}
	if rows > 0 && len(cells) != rows*flatColumnCount {
		return &ShapeMismatch{Cells: len(cells), Columns: flatColumnCount, Rows: rows}
	}
	return nil
}
