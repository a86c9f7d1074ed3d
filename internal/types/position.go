package types

// Position is the holding state on a bar.
type Position int

const (
	// PositionFlat means no holding.
	PositionFlat Position = 0
	// PositionLong means fully invested.
	PositionLong Position = 1
)

func (p Position) String() string {
	if p == PositionLong {
		return "LONG"
	}

	return "FLAT"
}

// Float returns the position as an exposure multiplier.
func (p Position) Float() float64 {
	return float64(p)
}

// PositionSeries is the position held on each bar, aligned with the input bars.
type PositionSeries []Position

// Exposure returns the fraction of bars spent LONG.
func (p PositionSeries) Exposure() float64 {
	if len(p) == 0 {
		return 0
	}

	long := 0
	for _, pos := range p {
		if pos == PositionLong {
			long++
		}
	}

	return float64(long) / float64(len(p))
}

// Entries counts FLAT to LONG transitions.
func (p PositionSeries) Entries() int {
	entries := 0
	for i := 1; i < len(p); i++ {
		if p[i] == PositionLong && p[i-1] == PositionFlat {
			entries++
		}
	}

	return entries
}
