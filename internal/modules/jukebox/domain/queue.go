package domain

// TrackQueue is the ordered sequence of resolved tracks attached to a live
// session. The head is the currently playing track; everything behind it is
// strictly pending.
type TrackQueue struct {
	tracks []*Track
}

// NewTrackQueue creates an empty TrackQueue.
func NewTrackQueue() TrackQueue {
	return TrackQueue{
		tracks: make([]*Track, 0),
	}
}

// IsEmpty returns true if the queue has no tracks.
func (q *TrackQueue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Len returns the number of tracks in the queue, head included.
func (q *TrackQueue) Len() int {
	return len(q.tracks)
}

// Current returns the head of the queue, or nil if the queue is empty.
func (q *TrackQueue) Current() *Track {
	if q.IsEmpty() {
		return nil
	}
	return q.tracks[0]
}

// Upcoming returns a copy of the tracks behind the head.
func (q *TrackQueue) Upcoming() []*Track {
	if q.Len() <= 1 {
		return nil
	}
	result := make([]*Track, q.Len()-1)
	copy(result, q.tracks[1:])
	return result
}

// Append adds track(s) to the tail of the queue.
func (q *TrackQueue) Append(tracks ...*Track) {
	q.tracks = append(q.tracks, tracks...)
}

// PushFront inserts a track at the head of the queue.
func (q *TrackQueue) PushFront(track *Track) {
	q.tracks = append([]*Track{track}, q.tracks...)
}

// PopFront removes and returns the head of the queue, or nil if empty.
func (q *TrackQueue) PopFront() *Track {
	if q.IsEmpty() {
		return nil
	}
	head := q.tracks[0]
	q.tracks = q.tracks[1:]
	return head
}

// Clear removes all tracks and returns how many were removed.
func (q *TrackQueue) Clear() int {
	count := len(q.tracks)
	q.tracks = make([]*Track, 0)
	return count
}
