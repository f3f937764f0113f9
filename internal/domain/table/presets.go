package table

import (
	"fmt"
	"sort"
)

// WBBSchema returns the 32-column women's basketball season stats layout.
// FG, 3FG and FT are scraped as "made-attempted" cells. Games started is the
// one column with a default: a blank means the player never started.
func WBBSchema() *Schema {
	split := func(left, right string) *SplitRule {
		return &SplitRule{Delimiter: "-", Left: left, Right: right}
	}

	return &Schema{
		Name: "wbb",
		Columns: []Column{
			{Name: "number", Type: Integer, Header: "#"},
			{Name: "player", Type: String, Kind: KindName, Header: "Player"},
			{Name: "class", Type: String, Header: "Yr"},
			{Name: "position", Type: String, Header: "Pos"},
			{Name: "height", Type: String, Header: "Ht"},
			{Name: "gp", Type: Integer, Header: "GP"},
			{Name: "gs", Type: Integer, Header: "GS", Default: int64(0)},
			{Name: "min", Type: Integer, Header: "MIN"},
			{Name: "min_avg", Type: Real, Header: "AVG"},
			{Name: "fg", Type: Integer, Header: "FG-FGA", Split: split("fgm", "fga")},
			{Name: "fg_pct", Type: Real, Header: "FG%"},
			{Name: "fg3", Type: Integer, Header: "3FG-FGA", Split: split("fg3m", "fg3a")},
			{Name: "fg3_pct", Type: Real, Header: "3FG%"},
			{Name: "ft", Type: Integer, Header: "FT-FTA", Split: split("ftm", "fta")},
			{Name: "ft_pct", Type: Real, Header: "FT%"},
			{Name: "oreb", Type: Integer, Header: "OFF"},
			{Name: "dreb", Type: Integer, Header: "DEF"},
			{Name: "reb", Type: Integer, Header: "TOT"},
			{Name: "reb_avg", Type: Real, Header: "AVG"},
			{Name: "pf", Type: Integer, Header: "PF"},
			{Name: "dq", Type: Integer, Header: "DQ"},
			{Name: "ast", Type: Integer, Header: "A"},
			{Name: "tov", Type: Integer, Header: "TO"},
			{Name: "ast_tov", Type: Real, Header: "A/TO"},
			{Name: "blk", Type: Integer, Header: "BLK"},
			{Name: "stl", Type: Integer, Header: "STL"},
			{Name: "pts", Type: Integer, Header: "PTS"},
			{Name: "pts_avg", Type: Real, Header: "AVG"},
			{Name: "dbl_dbl", Type: Integer, Header: "DBL-DBL"},
			{Name: "high_pts", Type: Integer, Header: "HI"},
			{Name: "eff", Type: Real, Header: "EFF"},
			{Name: "hometown", Type: String, Header: "Hometown"},
		},
	}
}

var presets = map[string]func() *Schema{
	"wbb": WBBSchema,
}

// Preset returns a fresh copy of a named schema
func Preset(name string) (*Schema, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	return build(), nil
}

// PresetNames lists the registered presets
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
