/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strconv"
)

const sizeUnits = "kMGTPE"

// humanReadableSize formats a byte count in SI units for SERVE log lines.
func humanReadableSize(n int64) string {
	if n < 1000 {
		return strconv.FormatInt(n, 10) + " B"
	}

	size := float64(n)
	unit := -1
	for size >= 1000 && unit < len(sizeUnits)-1 {
		size /= 1000
		unit++
	}

	return fmt.Sprintf("%.1f %cB", size, sizeUnits[unit])
}
