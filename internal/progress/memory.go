package progress

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memKey struct{ student, course string }

type memRecord struct {
	completed map[string]int64 // lessonID -> completedAt
	pct       int
	timeMin   int
	accessed  int64
}

type memoryStore struct {
	mu   sync.Mutex
	recs map[memKey]*memRecord
}

// NewInMemoryStore is a Store for tests.
func NewInMemoryStore() Store {
	return &memoryStore{recs: map[memKey]*memRecord{}}
}

func (m *memoryStore) rec(student, course string) *memRecord {
	k := memKey{student, course}
	r, ok := m.recs[k]
	if !ok {
		r = &memRecord{completed: map[string]int64{}}
		m.recs[k] = r
	}
	return r
}

func (m *memoryStore) CompleteLesson(_ context.Context, studentID, courseID, lessonID string, totalLessons int) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rec(studentID, courseID)
	if _, ok := r.completed[lessonID]; !ok {
		r.completed[lessonID] = time.Now().Unix()
	}
	r.pct = Pct(len(r.completed), totalLessons)
	r.accessed = time.Now().Unix()
	return m.snapshot(studentID, courseID, r), nil
}

func (m *memoryStore) UncompleteLesson(_ context.Context, studentID, courseID, lessonID string, totalLessons int) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rec(studentID, courseID)
	delete(r.completed, lessonID)
	r.pct = Pct(len(r.completed), totalLessons)
	r.accessed = time.Now().Unix()
	return m.snapshot(studentID, courseID, r), nil
}

func (m *memoryStore) AddTime(_ context.Context, studentID, courseID string, minutes int) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.rec(studentID, courseID)
	r.timeMin += minutes
	r.accessed = time.Now().Unix()
	return m.snapshot(studentID, courseID, r), nil
}

func (m *memoryStore) Get(_ context.Context, studentID, courseID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[memKey{studentID, courseID}]
	if !ok {
		return Snapshot{StudentID: studentID, CourseID: courseID, CompletedLessons: []CompletedLesson{}}, nil
	}
	return m.snapshot(studentID, courseID, r), nil
}

func (m *memoryStore) snapshot(studentID, courseID string, r *memRecord) Snapshot {
	out := Snapshot{
		StudentID:        studentID,
		CourseID:         courseID,
		CompletedLessons: make([]CompletedLesson, 0, len(r.completed)),
		ProgressPct:      r.pct,
		TotalTimeMin:     r.timeMin,
		LastAccessed:     r.accessed,
	}
	for id, at := range r.completed {
		out.CompletedLessons = append(out.CompletedLessons, CompletedLesson{LessonID: id, CompletedAt: at})
	}
	sort.Slice(out.CompletedLessons, func(i, j int) bool {
		return out.CompletedLessons[i].LessonID < out.CompletedLessons[j].LessonID
	})
	return out
}
