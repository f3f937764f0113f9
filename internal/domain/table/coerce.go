package table

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	errMissing    = errors.New("value missing")
	errNotANumber = errors.New("not a number")
)

// Commas are only accepted as thousands grouping, so "7,15" or ",5" from a
// misaligned cell never reads as a number.
var (
	integerPattern = regexp.MustCompile(`^[+-]?(?:\d{1,3}(?:,\d{3})+|\d+)$`)
	realPattern    = regexp.MustCompile(`^[+-]?(?:(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d*)?|\.\d+)$`)
)

// missingTokens are the placeholders stats pages print for an absent value
var missingTokens = map[string]bool{
	"":    true,
	"-":   true,
	"—":   true,
	"–":   true,
	"na":  true,
	"n/a": true,
}

// IsMissing reports whether a cleaned token stands for an absent value
func IsMissing(token string) bool {
	return missingTokens[strings.ToLower(token)]
}

// ParseValue converts a cleaned token to the Go value for typ
func ParseValue(typ ColumnType, token string) (any, error) {
	switch typ {
	case String:
		return token, nil
	case Integer:
		if IsMissing(token) {
			return nil, errMissing
		}
		if !integerPattern.MatchString(token) {
			return nil, fmt.Errorf("%w: %q", errNotANumber, token)
		}
		return strconv.ParseInt(strings.ReplaceAll(token, ",", ""), 10, 64)
	case Real:
		if IsMissing(token) {
			return nil, errMissing
		}
		s := strings.TrimSuffix(token, "%")
		if !realPattern.MatchString(s) {
			return nil, fmt.Errorf("%w: %q", errNotANumber, token)
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %q", errNotANumber, token)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown column type %q", typ)
	}
}

// Coerce converts one post-split row into a Record. row must line up with
// schema.Final(). Every failing column of the row is reported.
func Coerce(row []string, schema *Schema, index int) (Record, error) {
	final := schema.Final()
	if len(row) != len(final) {
		return nil, &ShapeMismatch{Cells: len(row), Columns: len(final), Rows: 1}
	}

	rec := make(Record, len(final))
	var errs []error
	for i, col := range final {
		token := normalizeFor(col.Kind, row[i])

		v, err := ParseValue(col.Type, token)
		if err != nil {
			if errors.Is(err, errMissing) && col.Default != nil {
				v, _ = normalizeDefault(col.Type, col.Default)
			} else {
				errs = append(errs, &CoercionError{
					Row:    index,
					Column: col.Name,
					Type:   col.Type,
					Raw:    row[i],
					Err:    err,
				})
				continue
			}
		}
		rec[col.Name] = v
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rec, nil
}

func normalizeFor(kind Kind, token string) string {
	if kind == KindName {
		return Apply(token, NameRules)
	}
	return Apply(token, SpaceRules)
}
