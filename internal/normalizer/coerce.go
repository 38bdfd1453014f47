package normalizer

import (
	"math"
	"strconv"
	"strings"
)

// ParseID coerces an id cell to an integer. Blank, non-numeric, negative
// and out-of-range cells degrade to 0, which means "unset".
func ParseID(cell string) int {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0
	}

	if id, err := strconv.Atoi(cell); err == nil {
		if id < 0 || id > math.MaxInt32 {
			return 0
		}
		return id
	}

	// numeric cells may come back formatted as floats ("5.0")
	f, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
