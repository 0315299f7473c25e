package utils

import (
	"runtime"
	"sync"

	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// ParallelForEachRow calls f once for every row in [0, height). The rows are split into
// ParallelFactor contiguous bands and each band runs in its own goroutine, so f must only
// write state owned by its row.
func ParallelForEachRow(height int, f func(y int)) {
	if height <= 0 {
		return
	}
	bands := ParallelFactor
	if bands > height {
		bands = height
	}
	bandSize := height / bands

	var wait sync.WaitGroup
	wait.Add(bands)
	for band := 0; band < bands; band++ {
		from := band * bandSize
		to := from + bandSize
		if band == bands-1 {
			to = height
		}
		utils.PanicCapturingGo(func() {
			defer wait.Done()
			for y := from; y < to; y++ {
				f(y)
			}
		})
	}
	wait.Wait()
}
