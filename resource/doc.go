// Package resource governs the resources that clustering runs share.
//
// The Controller manages three resource types:
//
//   - Memory: Reserve working memory before large allocations (non-blocking, fail-fast)
//   - Runs: Limit how many clustering runs execute at the same time
//   - IO: Rate-limit input reads so loading data does not starve other work
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for the hard limit and an atomic
// counter for usage. Reserve is non-blocking and returns
// ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	release, err := rc.Reserve(n * k * 4)
//	if err != nil {
//	    // ErrMemoryLimitExceeded - nothing was allocated
//	}
//	defer release()
//
// Without a configured limit, and for a nil Controller, Reserve compares the
// request with the free memory reported by the operating system where that
// is available (Linux).
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully. A nil Controller imposes no
// limits of its own.
package resource
