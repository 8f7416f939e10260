package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/JANE7J/DreamBalance-v2/internal/domain"
)

//go:embed schema.sql
var schema string

var (
	// ErrNotFound is returned when a row does not exist or belongs to another user
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an email twice
	ErrEmailTaken = errors.New("email already registered")
)

// Store handles database operations
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New opens the SQLite database at dbPath and applies the schema
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an already opened database without touching the schema
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

type userRow struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	Gender    string    `db:"gender"`
	CreatedAt time.Time `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.Password,
		Gender:       r.Gender,
		CreatedAt:    r.CreatedAt,
	}
}

// CreateUser inserts a user and fills in its ID and creation time
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password, gender, created_at) VALUES (?, ?, ?, ?, ?)",
		u.Username, u.Email, u.PasswordHash, u.Gender, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	u.CreatedAt = now
	return nil
}

// GetUserByEmail finds a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, username, email, password, gender, created_at FROM users WHERE email = ?",
		email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return row.toDomain(), nil
}

// GetUser finds a user by ID
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		"SELECT id, username, email, password, gender, created_at FROM users WHERE id = ?",
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

const entryColumns = `id, user_id, entry_date, created_at, sleep_type, sleep_duration_minutes,
	had_dream, dream_text, auto_title, user_title, mood_before_sleep,
	feeling_after_waking, dominant_emotion`

type entryRow struct {
	ID                   int64         `db:"id"`
	UserID               int64         `db:"user_id"`
	EntryDate            string        `db:"entry_date"`
	CreatedAt            time.Time     `db:"created_at"`
	SleepType            string        `db:"sleep_type"`
	SleepDurationMinutes sql.NullInt64 `db:"sleep_duration_minutes"`
	HadDream             sql.NullBool  `db:"had_dream"`
	DreamText            string        `db:"dream_text"`
	AutoTitle            string        `db:"auto_title"`
	UserTitle            string        `db:"user_title"`
	MoodBeforeSleep      string        `db:"mood_before_sleep"`
	FeelingAfterWaking   string        `db:"feeling_after_waking"`
	DominantEmotion      string        `db:"dominant_emotion"`
}

func (r entryRow) toDomain() domain.Entry {
	e := domain.Entry{
		ID:                 r.ID,
		UserID:             r.UserID,
		EntryDate:          r.EntryDate,
		CreatedAt:          r.CreatedAt,
		SleepType:          r.SleepType,
		DreamText:          r.DreamText,
		AutoTitle:          r.AutoTitle,
		UserTitle:          r.UserTitle,
		MoodBeforeSleep:    r.MoodBeforeSleep,
		FeelingAfterWaking: r.FeelingAfterWaking,
		DominantEmotion:    r.DominantEmotion,
	}
	if r.SleepDurationMinutes.Valid {
		v := int(r.SleepDurationMinutes.Int64)
		e.SleepDurationMinutes = &v
	}
	if r.HadDream.Valid {
		v := r.HadDream.Bool
		e.HadDream = &v
	}
	return e
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

// CreateEntry inserts an entry with its emotion scores and fills in ID and CreatedAt
func (s *Store) CreateEntry(ctx context.Context, e *domain.Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO dream_journal (
			user_id, entry_date, created_at, sleep_type, sleep_duration_minutes,
			had_dream, dream_text, auto_title, user_title, mood_before_sleep,
			feeling_after_waking, dominant_emotion
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.EntryDate, now, e.SleepType, nullableInt(e.SleepDurationMinutes),
		nullableBool(e.HadDream), e.DreamText, e.AutoTitle, e.UserTitle, e.MoodBeforeSleep,
		e.FeelingAfterWaking, e.DominantEmotion,
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("entry id: %w", err)
	}

	if err := insertEmotions(ctx, tx, id, e.Emotions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry: %w", err)
	}

	e.ID = id
	e.CreatedAt = now
	return nil
}

// UpdateEntry overwrites the mutable fields of an entry and replaces its emotions
func (s *Store) UpdateEntry(ctx context.Context, e *domain.Entry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE dream_journal SET
			sleep_type = ?, sleep_duration_minutes = ?, had_dream = ?, dream_text = ?,
			auto_title = ?, user_title = ?, mood_before_sleep = ?,
			feeling_after_waking = ?, dominant_emotion = ?
		WHERE id = ? AND user_id = ?`,
		e.SleepType, nullableInt(e.SleepDurationMinutes), nullableBool(e.HadDream), e.DreamText,
		e.AutoTitle, e.UserTitle, e.MoodBeforeSleep,
		e.FeelingAfterWaking, e.DominantEmotion,
		e.ID, e.UserID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update entry: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM dream_emotions WHERE entry_id = ?", e.ID); err != nil {
		return fmt.Errorf("clear emotions: %w", err)
	}
	if err := insertEmotions(ctx, tx, e.ID, e.Emotions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry: %w", err)
	}
	return nil
}

func insertEmotions(ctx context.Context, tx *sqlx.Tx, entryID int64, emotions []domain.EmotionScore) error {
	for _, em := range emotions {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO dream_emotions (entry_id, emotion, confidence) VALUES (?, ?, ?)",
			entryID, em.Label, em.Score,
		)
		if err != nil {
			return fmt.Errorf("insert emotion: %w", err)
		}
	}
	return nil
}

// DeleteEntry removes an entry owned by userID
func (s *Store) DeleteEntry(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM dream_journal WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEntry retrieves an entry owned by userID with its emotions
func (s *Store) GetEntry(ctx context.Context, userID, id int64) (*domain.Entry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+entryColumns+" FROM dream_journal WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	entry := row.toDomain()

	emotions, err := s.GetEntryEmotions(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Emotions = emotions

	return &entry, nil
}

// GetEntryEmotions returns the stored emotion ranking of an entry, best first
func (s *Store) GetEntryEmotions(ctx context.Context, entryID int64) ([]domain.EmotionScore, error) {
	var rows []struct {
		Emotion    string  `db:"emotion"`
		Confidence float64 `db:"confidence"`
	}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT emotion, confidence FROM dream_emotions WHERE entry_id = ? ORDER BY confidence DESC, id",
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("get entry emotions: %w", err)
	}

	emotions := make([]domain.EmotionScore, 0, len(rows))
	for _, r := range rows {
		emotions = append(emotions, domain.EmotionScore{Label: r.Emotion, Score: r.Confidence})
	}
	return emotions, nil
}

// RecentEntries returns entries dated within [from, to], most recent first.
// Dates are YYYY-MM-DD strings and compare lexically.
func (s *Store) RecentEntries(ctx context.Context, userID int64, from, to string) ([]domain.Entry, error) {
	return s.selectEntries(ctx, `
		SELECT `+entryColumns+` FROM dream_journal
		WHERE user_id = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date DESC, created_at DESC, id DESC`,
		userID, from, to,
	)
}

// ListEntriesInRange returns entries dated within [from, to] in calendar order
func (s *Store) ListEntriesInRange(ctx context.Context, userID int64, from, to string) ([]domain.Entry, error) {
	return s.selectEntries(ctx, `
		SELECT `+entryColumns+` FROM dream_journal
		WHERE user_id = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date ASC, created_at ASC, id ASC`,
		userID, from, to,
	)
}

func (s *Store) selectEntries(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]domain.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toDomain())
	}
	return entries, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
