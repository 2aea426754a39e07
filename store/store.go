// Package store reads learner and lesson state from the relational
// database owned by the lesson subsystem. This side only reads, to
// personalize conversation context; all writes happen elsewhere.
package store

import (
	"context"
)

// Learner is a user of the learning platform.
type Learner struct {
	ID              string
	Name            string
	Level           string // beginner, intermediate, advanced
	CurrentLessonID string
}

// Lesson is one unit of the course the learner may be working through.
type Lesson struct {
	ID    string
	Title string
	Level string
}

// Driver is the read-only interface over the lesson database.
type Driver interface {
	GetLearner(ctx context.Context, learnerID string) (*Learner, error)
	GetLesson(ctx context.Context, lessonID string) (*Lesson, error)
	Close() error
}

// Store wraps a Driver with the convenience queries the agent needs.
type Store struct {
	driver Driver
}

func New(driver Driver) *Store {
	return &Store{driver: driver}
}

// CurrentLesson resolves the learner's active lesson. A missing
// learner or lesson is not an error here; personalization is optional.
func (s *Store) CurrentLesson(ctx context.Context, learnerID string) (*Learner, *Lesson) {
	if learnerID == "" {
		return nil, nil
	}
	learner, err := s.driver.GetLearner(ctx, learnerID)
	if err != nil || learner == nil {
		return nil, nil
	}
	if learner.CurrentLessonID == "" {
		return learner, nil
	}
	lesson, err := s.driver.GetLesson(ctx, learner.CurrentLessonID)
	if err != nil {
		return learner, nil
	}
	return learner, lesson
}

func (s *Store) Close() error {
	return s.driver.Close()
}
