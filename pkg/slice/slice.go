// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

// Package slice complements the standard [slices] package with the two
// generic transforms handler code keeps needing.
package slice

// Map transforms a slice of T into a slice of U, preserving order.
// A nil input stays nil.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, len(input))
	for index, value := range input {
		result[index] = transform(value)
	}

	return result
}

// Filter returns the elements for which the predicate holds.
// A nil input stays nil.
func Filter[T any](input []T, predicate func(T) bool) []T {
	if input == nil {
		return nil
	}

	// Not pre-allocated: heavy filters would waste the capacity.
	var result []T
	for _, value := range input {
		if predicate(value) {
			result = append(result, value)
		}
	}

	return result
}
