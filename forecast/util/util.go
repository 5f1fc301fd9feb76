// Package util holds small formatting helpers shared by forecast model printers.
package util

import "strings"

// IndentExpand repeats the indent growth times
func IndentExpand(indent string, growth int) string {
	if growth <= 0 {
		return ""
	}
	return strings.Repeat(indent, growth)
}
