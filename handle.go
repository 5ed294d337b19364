package javaio

// handleTable maps wire handles to decoded content. Handles are assigned
// from BaseWireHandle upward, one per reference-eligible item.
type handleTable struct {
	next    int32
	entries map[int32]Content
}

func newHandleTable() *handleTable {
	return &handleTable{
		next:    BaseWireHandle,
		entries: make(map[int32]Content),
	}
}

// newHandle reserves the next handle. The content is registered separately
// with save, which may happen before the content is fully decoded.
func (t *handleTable) newHandle() int32 {
	h := t.next
	t.next++
	return h
}

func (t *handleTable) save(handle int32, c Content) {
	t.entries[handle] = c
}

func (t *handleTable) resolve(handle int32) (Content, bool) {
	c, ok := t.entries[handle]
	return c, ok
}

func (t *handleTable) len() int {
	return len(t.entries)
}

// reset forgets every registration and rewinds numbering (TC_RESET).
func (t *handleTable) reset() {
	t.entries = make(map[int32]Content)
	t.next = BaseWireHandle
}
