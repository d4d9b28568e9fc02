package domain

// WaitingTrack is an unresolved track locator waiting to be pulled into the
// TrackQueue. Resolution is deferred until the entry reaches the front.
type WaitingTrack struct {
	Locator     string // URL or transport-encoded handle
	RequestedBy RequestedBy
}

// WaitingList is the ordered sequence of not-yet-resolved track locators for
// one guild. Entries leave the list strictly in FIFO order; the only
// exceptions are the tail re-insertion performed by queue looping and the
// bulk removal performed by skip-to.
type WaitingList struct {
	entries []WaitingTrack
}

// NewWaitingList creates an empty WaitingList.
func NewWaitingList() WaitingList {
	return WaitingList{
		entries: make([]WaitingTrack, 0),
	}
}

// IsEmpty returns true if the list has no entries.
func (w *WaitingList) IsEmpty() bool {
	return len(w.entries) == 0
}

// Len returns the number of pending entries.
func (w *WaitingList) Len() int {
	return len(w.entries)
}

// Append adds entries to the tail of the list.
func (w *WaitingList) Append(entries ...WaitingTrack) {
	w.entries = append(w.entries, entries...)
}

// PopFront removes and returns the front entry, or nil if the list is empty.
func (w *WaitingList) PopFront() *WaitingTrack {
	if w.IsEmpty() {
		return nil
	}
	front := w.entries[0]
	w.entries = w.entries[1:]
	return &front
}

// Peek returns a copy of all pending entries.
func (w *WaitingList) Peek() []WaitingTrack {
	result := make([]WaitingTrack, len(w.entries))
	copy(result, w.entries)
	return result
}

// DropBefore removes the first position-1 entries so that the entry at the
// 1-indexed position becomes the new front. Returns false without mutating
// anything if position is out of range.
func (w *WaitingList) DropBefore(position int) bool {
	if position < 1 || position > len(w.entries) {
		return false
	}
	w.entries = w.entries[position-1:]
	return true
}

// Clear removes all entries and returns how many were removed.
func (w *WaitingList) Clear() int {
	count := len(w.entries)
	w.entries = make([]WaitingTrack, 0)
	return count
}
