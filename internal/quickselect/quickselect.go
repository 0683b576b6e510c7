package quickselect

const (
	// SortThreshold is the range length below which a range is sorted instead
	// of partitioned.
	SortThreshold = 20

	// nintherThreshold is the range length from which the pivot is taken from
	// nine evenly spaced samples instead of three.
	nintherThreshold = 100
)

// Median returns the statistical median of a. For an even length it is the
// mean of the two middle order statistics.
// The slice is reordered in place. Median panics if a is empty.
func Median(a []float32) float32 {
	n := len(a)
	if n == 0 {
		panic("quickselect: median of empty slice")
	}

	mid := n / 2
	upper := Select(a, mid)
	if n%2 == 1 {
		return upper
	}

	// After selecting rank mid every value in a[:mid] is <= upper, so the
	// lower middle value is the largest of them.
	lower := a[0]
	for _, v := range a[1:mid] {
		if v > lower {
			lower = v
		}
	}
	// Averaged in float64 so two large values of the same sign cannot overflow.
	return float32((float64(lower) + float64(upper)) / 2)
}

// MedianCopy is like Median but leaves a untouched.
func MedianCopy(a []float32) float32 {
	if len(a) == 0 {
		panic("quickselect: median of empty slice")
	}
	buf := make([]float32, len(a))
	copy(buf, a)
	return Median(buf)
}

// Select returns the k-th smallest value of a (k is 0-based).
// On return a[k] holds that value, every value left of k is <= a[k] and every
// value right of k is >= a[k]. Select panics if k is out of range.
func Select(a []float32, k int) float32 {
	if k < 0 || k >= len(a) {
		panic("quickselect: rank out of range")
	}

	lo, hi := 0, len(a)-1
	for hi-lo+1 >= SortThreshold {
		pivot := choosePivot(a, lo, hi)
		lt, gt := partition3(a, lo, hi, pivot)

		switch {
		case k < lt:
			hi = lt - 1
		case k > gt:
			lo = gt + 1
		default:
			return a[k]
		}
	}

	insertionSort(a[lo : hi+1])
	return a[k]
}

// partition3 rearranges a[lo:hi+1] into three bands: < pivot, == pivot and
// > pivot. It returns the bounds [lt, gt] of the equal band.
func partition3(a []float32, lo, hi int, pivot float32) (int, int) {
	lt, i, gt := lo, lo, hi
	for i <= gt {
		switch v := a[i]; {
		case v < pivot:
			a[lt], a[i] = a[i], a[lt]
			lt++
			i++
		case v > pivot:
			a[i], a[gt] = a[gt], a[i]
			gt--
		default:
			i++
		}
	}
	return lt, gt
}

func choosePivot(a []float32, lo, hi int) float32 {
	n := hi - lo + 1
	mid := lo + n/2
	if n < nintherThreshold {
		return median3(a[lo], a[mid], a[hi])
	}

	step := n / 9
	var s [9]float32
	for i := range s {
		s[i] = a[lo+i*step]
	}
	insertionSort(s[:])
	return s[4]
}

func median3(x, y, z float32) float32 {
	if x > y {
		x, y = y, x
	}
	if y > z {
		y = z
	}
	if x > y {
		return x
	}
	return y
}

func insertionSort(a []float32) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
