// Package cache provides a small thread-safe LRU used to memoize knob
// resolutions and decoded datasets across batch combinations.
package cache
