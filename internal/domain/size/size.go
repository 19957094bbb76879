package size

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Format renders n with binary prefixes. Precision narrows as the value
// grows: two decimals below 10, one below 100, none above.
func Format(n int64) string {
	if n < 0 {
		n = 0
	}
	value := float64(n)
	idx := 0
	for value >= 1024 && idx < len(units)-1 {
		value /= 1024
		idx++
	}
	if idx == 0 {
		return fmt.Sprintf("%d B", n)
	}
	switch {
	case value < 10:
		return fmt.Sprintf("%.2f %s", value, units[idx])
	case value < 100:
		return fmt.Sprintf("%.1f %s", value, units[idx])
	default:
		return fmt.Sprintf("%.0f %s", value, units[idx])
	}
}

var multipliers = map[string]float64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// Parse reads strings like "500", "1.5GB" or "10 mb" (case-insensitive,
// optional unit suffix) and returns the byte count rounded down.
func Parse(s string) (int64, error) {
	trimmed := strings.TrimSpace(strings.ToUpper(s))
	if trimmed == "" {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	numEnd := len(trimmed)
	for i, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			numEnd = i
			break
		}
	}
	numPart := strings.TrimSpace(trimmed[:numEnd])
	unitPart := strings.TrimSpace(trimmed[numEnd:])

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	mult := 1.0
	if unitPart != "" {
		m, ok := multipliers[unitPart]
		if !ok {
			return 0, fmt.Errorf("invalid size unit %q", s)
		}
		mult = m
	}

	return int64(math.Floor(value * mult)), nil
}
