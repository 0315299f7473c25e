package utils

import (
	"sync/atomic"
	"testing"

	"go.viam.com/test"
)

func TestParallelForEachRow(t *testing.T) {
	for _, factor := range []int{1, 3, 64} {
		old := ParallelFactor
		ParallelFactor = factor
		seen := make([]int32, 10)
		ParallelForEachRow(len(seen), func(y int) {
			atomic.AddInt32(&seen[y], 1)
		})
		ParallelFactor = old
		for _, n := range seen {
			test.That(t, n, test.ShouldEqual, int32(1))
		}
	}

	called := false
	ParallelForEachRow(0, func(int) { called = true })
	test.That(t, called, test.ShouldBeFalse)
}

func TestSafeJoinDir(t *testing.T) {
	path, err := SafeJoinDir("/objs", "andy/andy.obj")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldEqual, "/objs/andy/andy.obj")

	_, err = SafeJoinDir("/objs", "../etc/passwd")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "escapes")
}
