package photosheet

import (
	"runtime"
	"sync"
)

// minBandWork is the smallest amount of per-band work (in samples) worth a goroutine.
const minBandWork = 1 << 14

// parallelBands splits [0, n) into contiguous bands and runs fn on each,
// returning once every band is done. work is the number of samples one
// index touches; small jobs run on the calling goroutine.
func parallelBands(n, work int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	workers = min(workers, n, max(1, n*work/minBandWork))
	if workers <= 1 {
		fn(0, n)
		return
	}
	band := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += band {
		hi := min(lo+band, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(lo, hi)
		}()
	}
	wg.Wait()
}
