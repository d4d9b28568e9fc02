package domain

import "testing"

func testTrack(title string) *Track {
	return &Track{
		Encoded: "encoded-" + title,
		Title:   title,
	}
}

func TestTrackQueue_Empty(t *testing.T) {
	q := NewTrackQueue()

	if !q.IsEmpty() {
		t.Error("expected new queue to be empty")
	}
	if q.Len() != 0 {
		t.Errorf("expected Len 0, got %d", q.Len())
	}
	if q.Current() != nil {
		t.Error("expected Current to be nil on empty queue")
	}
	if q.PopFront() != nil {
		t.Error("expected PopFront to return nil on empty queue")
	}
	if q.Upcoming() != nil {
		t.Error("expected Upcoming to be nil on empty queue")
	}
}

func TestTrackQueue_AppendAndCurrent(t *testing.T) {
	q := NewTrackQueue()

	q.Append(testTrack("a"), testTrack("b"))

	if q.Len() != 2 {
		t.Fatalf("expected Len 2, got %d", q.Len())
	}
	if got := q.Current(); got == nil || got.Title != "a" {
		t.Errorf("expected current track a, got %v", got)
	}

	upcoming := q.Upcoming()
	if len(upcoming) != 1 || upcoming[0].Title != "b" {
		t.Errorf("expected upcoming [b], got %v", upcoming)
	}
}

func TestTrackQueue_PopFront(t *testing.T) {
	q := NewTrackQueue()
	q.Append(testTrack("a"), testTrack("b"))

	popped := q.PopFront()
	if popped == nil || popped.Title != "a" {
		t.Fatalf("expected to pop a, got %v", popped)
	}
	if got := q.Current(); got == nil || got.Title != "b" {
		t.Errorf("expected new head b, got %v", got)
	}

	q.PopFront()
	if !q.IsEmpty() {
		t.Error("expected queue to be empty after popping all tracks")
	}
}

func TestTrackQueue_PushFront(t *testing.T) {
	q := NewTrackQueue()
	q.Append(testTrack("b"))

	q.PushFront(testTrack("a"))

	if got := q.Current(); got == nil || got.Title != "a" {
		t.Errorf("expected head a after PushFront, got %v", got)
	}
	if q.Len() != 2 {
		t.Errorf("expected Len 2, got %d", q.Len())
	}
}

func TestTrackQueue_Clear(t *testing.T) {
	q := NewTrackQueue()
	q.Append(testTrack("a"), testTrack("b"), testTrack("c"))

	count := q.Clear()

	if count != 3 {
		t.Errorf("expected Clear to report 3 removed, got %d", count)
	}
	if !q.IsEmpty() {
		t.Error("expected queue to be empty after Clear")
	}
}

func TestTrackQueue_UpcomingReturnsCopy(t *testing.T) {
	q := NewTrackQueue()
	q.Append(testTrack("a"), testTrack("b"))

	upcoming := q.Upcoming()
	upcoming[0] = testTrack("mutated")

	if got := q.Upcoming()[0]; got.Title != "b" {
		t.Error("Upcoming should return a copy")
	}
}
