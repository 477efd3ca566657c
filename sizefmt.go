package msi

import "fmt"

// SizeToString formats a byte count with binary units, e.g. "1.25 MB".
func SizeToString(value uint64) string {
	units := []string{"Bytes", "KB", "MB", "GB", "TB"}

	idx := 0
	v := float64(value)
	for v >= 1024.0 && idx < len(units)-1 {
		v /= 1024.0
		idx++
	}

	if idx == 0 {
		return fmt.Sprintf("%d %s", value, units[0])
	}
	return fmt.Sprintf("%.2f %s", v, units[idx])
}
