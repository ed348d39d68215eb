// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

// Package query parses the list-style query parameters used by filterable
// API endpoints.
package query

import "strings"

// StringSlice splits a comma-separated query value into a trimmed slice.
// Empty segments are dropped; an empty input yields nil.
func StringSlice(value string) []string {
	if value == "" {
		return nil
	}

	var parts []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	return parts
}
