package models

import (
	"fmt"
	"strings"
)

// AreaCount is the number of K3Y operating areas, K3Y/0 through K3Y/9.
const AreaCount = 10

// Areas lists every valid area identifier in order.
func Areas() []string {
	areas := make([]string, 0, AreaCount)
	for i := 0; i < AreaCount; i++ {
		areas = append(areas, fmt.Sprintf("K3Y/%d", i))
	}
	return areas
}

// NormalizeArea upper-cases and trims an area identifier and reports whether
// it names one of the ten areas.
func NormalizeArea(raw string) (string, bool) {
	area := strings.ToUpper(strings.TrimSpace(raw))
	if len(area) != len("K3Y/0") || !strings.HasPrefix(area, "K3Y/") {
		return area, false
	}
	digit := area[len(area)-1]
	return area, digit >= '0' && digit <= '9'
}
