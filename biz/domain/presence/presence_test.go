package presence

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterTransitions(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Register("x"))
	assert.False(t, r.Register("x"))
	assert.Equal(t, 2, r.Connections("x"))
	assert.Equal(t, []string{"x"}, r.Snapshot())

	assert.False(t, r.Deregister("x"))
	assert.True(t, r.Online("x"))
	assert.True(t, r.Deregister("x"))
	assert.False(t, r.Online("x"))
	assert.Empty(t, r.Snapshot())
	assert.Equal(t, 0, r.Len())
}

func TestDeregisterAbsentIsNoop(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Deregister("ghost"))
	assert.Equal(t, 0, r.Connections("ghost"))

	r.Register("x")
	assert.True(t, r.Deregister("x"))
	assert.False(t, r.Deregister("x"))
	assert.Equal(t, 0, r.Connections("x"))

	// 重复注销后重新上线仍然是一次离线到在线的跨越
	assert.True(t, r.Register("x"))
}

func TestSnapshotSortedCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("c")
	r.Register("a")
	r.Register("b")
	snap := r.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, snap)

	snap[0] = "mutated"
	assert.Equal(t, []string{"a", "b", "c"}, r.Snapshot())
}

func TestConcurrentTransitionsCountedOnce(t *testing.T) {
	r := NewRegistry()
	const users, conns = 16, 50

	var firsts, absents atomic.Int64
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		uid := fmt.Sprintf("u%d", u)
		for c := 0; c < conns; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if r.Register(uid) {
					firsts.Add(1)
				}
			}()
		}
	}
	wg.Wait()
	assert.EqualValues(t, users, firsts.Load())
	assert.Equal(t, users, r.Len())

	for u := 0; u < users; u++ {
		uid := fmt.Sprintf("u%d", u)
		// 多注销一次, 验证不会出现负数
		for c := 0; c < conns+1; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if r.Deregister(uid) {
					absents.Add(1)
				}
			}()
		}
	}
	wg.Wait()
	assert.EqualValues(t, users, absents.Load())
	assert.Empty(t, r.Snapshot())
}
