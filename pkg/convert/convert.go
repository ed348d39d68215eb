// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
Package convert provides fault-tolerant string conversions for handler code.

Parsing errors collapse to zero values or an explicit default, which is the
behavior wanted for optional query parameters. Do not use it where malformed
input must be distinguished from an absent value.
*/
package convert

import "strconv"

// ToInt converts a string to an integer, silencing parsing errors.
// It returns 0 if the string is empty or cannot be parsed.
func ToInt(value string) int {
	if value == "" {
		return 0
	}

	parsed, _ := strconv.Atoi(value)
	return parsed
}

// ToIntD converts a string to an int, returning the provided default if the
// string is empty or does not parse.
func ToIntD(value string, fallback int) int {
	if value == "" {
		return fallback
	}

	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}

	return fallback
}

// ToBool parses a boolean string ("true", "1", "false", "0").
// It returns false on empty string or parse error.
func ToBool(value string) bool {
	if value == "" {
		return false
	}

	parsed, _ := strconv.ParseBool(value)
	return parsed
}
