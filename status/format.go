package status

import "strconv"

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
