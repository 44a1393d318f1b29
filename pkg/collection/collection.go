// Package collection provides generic helpers for slices: Map, Filter,
// KeyBy, Pluck, UniqueBy, CountBy, SortBy and Take.
//
//	emails := collection.Pluck(events, func(e models.TrackingEvent) string { return e.CustomerEmail })
//	clicks := collection.Filter(events, func(e models.TrackingEvent) bool { return e.EventType == "click" })
package collection

import "sort"

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	var out []T
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Pluck is Map under the name used for extracting a single field.
func Pluck[T, R any](s []T, fn func(T) R) []R {
	return Map(s, fn)
}

// UniqueBy keeps the first element for each key produced by fn.
func UniqueBy[T any, K comparable](s []T, fn func(T) K) []T {
	seen := make(map[K]struct{}, len(s))
	var out []T
	for _, v := range s {
		k := fn(v)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Count is one key and how often it occurred.
type Count[K comparable] struct {
	Key   K
	Count int
}

// CountBy tallies elements by key. Keys appear in order of first occurrence.
func CountBy[T any, K comparable](s []T, fn func(T) K) []Count[K] {
	idx := make(map[K]int)
	var out []Count[K]
	for _, v := range s {
		k := fn(v)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count[K]{Key: k})
		}
		out[i].Count++
	}
	return out
}

// SortBy stable-sorts s in place with less and returns it.
func SortBy[T any](s []T, less func(a, b T) bool) []T {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
	return s
}

// Take returns at most the first n elements.
func Take[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n >= len(s) {
		return s
	}
	return s[:n]
}

// KeyBy turns s into a map using the key produced by fn. Later elements win.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}
