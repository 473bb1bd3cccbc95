package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNoGrades     = errors.New("no grades")
	ErrInvalidGrade = errors.New("invalid grade")
)

// AverageGrade returns the mean of space-separated grades, e.g. "5 4 4,5".
func AverageGrade(text string) (float64, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, ErrNoGrades
	}
	var sum float64
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.ReplaceAll(f, ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, f)
		}
		sum += v
	}
	return sum / float64(len(fields)), nil
}
