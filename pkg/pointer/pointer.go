// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

// Package pointer removes the boilerplate around optional values: taking the
// address of a literal for a nullable field, and dereferencing one that may
// be nil.
package pointer

// To returns a pointer to the provided value. Useful for assigning a literal
// to a nullable struct field, e.g. pointer.To(time.Now()).
func To[T any](value T) *T {
	return &value
}

// Val dereferences a pointer, returning the zero value of the underlying
// type if it is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
