// internal/catalog/colors.go
package catalog

// Color identifies a property line group. Every color has a fixed set size
// (cards needed to complete the set) and a rent schedule indexed by the
// number of cards currently in the set.
type Color string

const (
	Brown    Color = "brown"
	Blue     Color = "blue"
	Pink     Color = "pink"
	Orange   Color = "orange"
	Red      Color = "red"
	Yellow   Color = "yellow"
	Green    Color = "green"
	DarkBlue Color = "darkblue"
	Railroad Color = "railroad"
	Utility  Color = "utility"
)

// AllColors lists every color in deck order.
var AllColors = []Color{
	Brown, Blue, Pink, Orange, Red, Yellow, Green, DarkBlue, Railroad, Utility,
}

// setSizes maps each color to the card count that completes its set.
var setSizes = map[Color]int{
	Brown:    2,
	Blue:     3,
	Pink:     3,
	Orange:   3,
	Red:      3,
	Yellow:   3,
	Green:    3,
	DarkBlue: 2,
	Railroad: 4,
	Utility:  2,
}

// rentSchedules maps each color to rent by card count; index 0 is the rent
// for a single card. Schedules are non-decreasing.
var rentSchedules = map[Color][]int{
	Brown:    {1, 2},
	Blue:     {1, 2, 3},
	Pink:     {1, 2, 4},
	Orange:   {1, 3, 5},
	Red:      {2, 3, 6},
	Yellow:   {2, 4, 6},
	Green:    {2, 4, 7},
	DarkBlue: {3, 8},
	Railroad: {1, 2, 3, 4},
	Utility:  {1, 2},
}

// Flat rent bonuses for improvements on a complete set.
const (
	ExpressBonus = 3
	StationBonus = 4
)

// ValidColor reports whether c is one of the known colors.
func ValidColor(c Color) bool {
	_, ok := setSizes[c]
	return ok
}

// SetSize returns the number of cards required to complete a set of color c.
// Returns 0 for an unknown color.
func SetSize(c Color) int {
	return setSizes[c]
}

// RentAt returns the scheduled rent for a set of color c holding count cards.
// Counts beyond the set size clamp to the top of the schedule (a set can
// exceed its size when wildcards pile on).
func RentAt(c Color, count int) int {
	sched, ok := rentSchedules[c]
	if !ok || count <= 0 {
		return 0
	}
	if count > len(sched) {
		count = len(sched)
	}
	return sched[count-1]
}

// Improvable reports whether a set of color c may receive improvements.
// Railroads and utilities never take them.
func Improvable(c Color) bool {
	return ValidColor(c) && c != Railroad && c != Utility
}
