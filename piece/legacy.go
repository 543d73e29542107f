package piece

// LegacyRule is the hand-written legality check of one variant and direction
// as the first console version of the game shipped it: a few probe cells that
// must be free plus a bounds expression on the anchor.
//
// The probes approximate the target footprint and are known to be imprecise:
// TDown's left probes test the bar row and the two rows under it, TUp probes
// two columns left of the stem, LTall's rotate bound compares a row against
// the board width, and rotating any T is always allowed.
type LegacyRule struct {
	Probes []Cell
	Bounds func(anchor Cell, width, height int) bool
}

func always(Cell, int, int) bool { return true }

func colAbove(n int) func(Cell, int, int) bool {
	return func(a Cell, _, _ int) bool { return a.Col > n }
}

func colPlusBelowWidth(n int) func(Cell, int, int) bool {
	return func(a Cell, width, _ int) bool { return a.Col+n < width }
}

func rowPlusBelowHeight(n int) func(Cell, int, int) bool {
	return func(a Cell, _, height int) bool { return a.Row+n < height }
}

var legacyRules = [Count][4]LegacyRule{
	HLine: {
		Left:   {[]Cell{{0, -1}}, colAbove(0)},
		Right:  {[]Cell{{0, 3}}, colPlusBelowWidth(3)},
		Down:   {[]Cell{{1, 0}, {1, 1}, {1, 2}}, rowPlusBelowHeight(1)},
		Rotate: {[]Cell{{1, 0}, {2, 0}}, always},
	},
	VLine: {
		Left:   {[]Cell{{0, -1}, {1, -1}, {2, -1}}, colAbove(0)},
		Right:  {[]Cell{{0, 1}, {1, 1}, {2, 1}}, colPlusBelowWidth(1)},
		Down:   {[]Cell{{3, 0}}, rowPlusBelowHeight(3)},
		Rotate: {[]Cell{{0, 1}, {0, 2}}, always},
	},
	LFlat: {
		Left:   {[]Cell{{0, -1}, {1, -1}}, colAbove(0)},
		Right:  {[]Cell{{0, 1}, {1, 3}}, colPlusBelowWidth(3)},
		Down:   {[]Cell{{2, 0}, {2, 1}, {2, 2}}, rowPlusBelowHeight(2)},
		Rotate: {[]Cell{{-1, 0}}, always},
	},
	LTall: {
		Left:  {[]Cell{{0, -1}, {1, -1}, {2, -1}}, colAbove(0)},
		Right: {[]Cell{{0, 1}, {1, 1}, {2, 2}}, colPlusBelowWidth(2)},
		Down:  {[]Cell{{3, 0}, {3, 1}}, rowPlusBelowHeight(3)},
		Rotate: {[]Cell{{1, 1}, {1, 2}}, func(a Cell, width, _ int) bool {
			return a.Row+3 < width
		}},
	},
	TDown: {
		Left:   {[]Cell{{0, -1}, {1, -1}, {2, -1}}, colAbove(0)},
		Right:  {[]Cell{{0, 3}, {1, 2}, {2, 2}}, colPlusBelowWidth(3)},
		Down:   {[]Cell{{3, 1}, {1, 0}, {1, 2}}, rowPlusBelowHeight(3)},
		Rotate: {nil, always},
	},
	TRight: {
		Left:   {[]Cell{{0, -1}, {1, -1}, {2, -1}}, colAbove(0)},
		Right:  {[]Cell{{0, 1}, {1, 3}, {2, 1}}, colPlusBelowWidth(3)},
		Down:   {[]Cell{{3, 0}, {2, 1}, {2, 2}}, rowPlusBelowHeight(3)},
		Rotate: {nil, always},
	},
	TUp: {
		Left:   {[]Cell{{0, -1}, {1, -1}, {2, -2}}, colAbove(0)},
		Right:  {[]Cell{{0, 1}, {1, 1}, {2, 2}}, colPlusBelowWidth(3)},
		Down:   {[]Cell{{3, 0}, {3, -1}, {3, 1}}, rowPlusBelowHeight(3)},
		Rotate: {nil, always},
	},
	TLeft: {
		Left:   {[]Cell{{0, -1}, {-1, 1}, {1, 1}}, colAbove(0)},
		Right:  {[]Cell{{0, 3}, {-1, 3}, {1, 3}}, colPlusBelowWidth(3)},
		Down:   {[]Cell{{1, 0}, {1, 1}, {2, 2}}, rowPlusBelowHeight(2)},
		Rotate: {nil, always},
	},
}

// Legacy returns the legacy rule for v moving d.
func Legacy(v Variant, d Direction) LegacyRule {
	return legacyRules[v.MustValid()][d]
}
