package service

import "strconv"

func formatWeighting(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64) + "%"
}
