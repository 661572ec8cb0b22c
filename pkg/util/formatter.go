package util

import (
	"fmt"
	"math"
	"strconv"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue == 0:
		return fmt.Sprintf("0.000 %s", unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	case absValue >= 1e-15:
		return fmt.Sprintf("%.3f f%s", value*1e15, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

var componentScales = []struct {
	mult   float64
	suffix string
}{
	{1e12, "T"},
	{1e9, "G"},
	{1e6, "meg"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "u"},
	{1e-9, "n"},
	{1e-12, "p"},
	{1e-15, "f"},
}

// FormatComponent renders a component value in engineering notation
// that round-trips through netlist.ParseValue, e.g. 1.8927e-14 ->
// "18.927f". Output is deterministic for a given value.
func FormatComponent(value float64) string {
	if value == 0 {
		return "0"
	}
	abs := math.Abs(value)
	for _, s := range componentScales {
		if abs >= s.mult {
			return strconv.FormatFloat(value/s.mult, 'g', 6, 64) + s.suffix
		}
	}
	// Below one femto: plain scientific notation.
	return strconv.FormatFloat(value, 'e', 6, 64)
}
