package engine

import (
	"sync"

	"github.com/ZB94/bin2json/internal/bits"
	"github.com/ZB94/bin2json/pkg/schema"
)

// writeSlot is one struct field's working entry during the two-pass
// back-patching write: its declared type, and the encoded region once a
// pass has produced one.
type writeSlot struct {
	ty     *schema.Type
	region bits.Buffer
	have   bool
}

// writeState is the per-struct working table the two-pass writer threads
// through both passes: key_pos order plus the result map of
// original_source/src/ty/write_struct.rs's `write_struct`. Pooled since a
// deeply nested schema writes one of these per Struct field, often of
// similar shape call to call.
type writeState struct {
	order []string
	slots map[string]*writeSlot
}

func (s *writeState) reset() {
	s.order = s.order[:0]
	for k := range s.slots {
		delete(s.slots, k)
	}
}

var writeStatePool = sync.Pool{
	New: func() any {
		return &writeState{slots: make(map[string]*writeSlot, 8)}
	},
}

// getWriteState returns a cleared writeState from the pool.
func getWriteState() *writeState {
	return writeStatePool.Get().(*writeState)
}

// putWriteState returns s to the pool after clearing it. Callers must not
// retain s or any pointer obtained from it afterward.
func putWriteState(s *writeState) {
	s.reset()
	writeStatePool.Put(s)
}
