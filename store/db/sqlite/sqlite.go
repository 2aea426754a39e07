// Package sqlite implements the read-only lesson store driver over the
// sqlite database written by the lesson subsystem.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/signos-ai/signos/store"
)

type DB struct {
	db *sql.DB
}

// NewDB opens the lesson database read-only.
func NewDB(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}
	db, err := sql.Open("sqlite", dsn+"?mode=ro")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	return &DB{db: db}, nil
}

func (d *DB) GetLearner(ctx context.Context, learnerID string) (*store.Learner, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, level, COALESCE(current_lesson_id, '')
		FROM learner
		WHERE id = ?`, learnerID)

	learner := &store.Learner{}
	if err := row.Scan(&learner.ID, &learner.Name, &learner.Level, &learner.CurrentLessonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to query learner")
	}
	return learner, nil
}

func (d *DB) GetLesson(ctx context.Context, lessonID string) (*store.Lesson, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, title, level
		FROM lesson
		WHERE id = ?`, lessonID)

	lesson := &store.Lesson{}
	if err := row.Scan(&lesson.ID, &lesson.Title, &lesson.Level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to query lesson")
	}
	return lesson, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
