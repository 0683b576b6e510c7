// Package quickselect finds order statistics of float32 slices without fully
// sorting them.
//
// Selection uses an iterative three-way partition: values strictly equal to
// the pivot form their own band, so inputs with many duplicates cannot drive
// the partition into quadratic behaviour. Short ranges fall back to an
// insertion sort.
//
// Inputs must be non-empty and NaN-free. Callers filter missing values first.
package quickselect
