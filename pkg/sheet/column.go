package sheet

import (
	"fmt"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ColumnName converts a 1-indexed column number to its letter address
// (1 -> "A", 26 -> "Z", 27 -> "AA"). Unlike excelize.ColumnNumberToName it is
// not capped at the xlsx column limit.
func ColumnName(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("column number must be positive, got %d", n)
	}
	var buf []byte
	for n > 0 {
		n--
		buf = append(buf, alphabet[n%26])
		n /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

// ColumnNumber converts a letter address back to its 1-indexed column number.
// Lowercase letters are accepted.
func ColumnNumber(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	n := 0
	for _, r := range strings.ToUpper(name) {
		i := strings.IndexRune(alphabet, r)
		if i < 0 {
			return 0, fmt.Errorf("invalid column name %q", name)
		}
		n = n*26 + i + 1
	}
	return n, nil
}

// CellName returns the spreadsheet address of a coordinate, e.g. (2, 5) -> "B5".
func CellName(col, row int) string {
	name, err := ColumnName(col)
	if err != nil || row < 1 {
		return fmt.Sprintf("R%dC%d", row, col)
	}
	return fmt.Sprintf("%s%d", name, row)
}
