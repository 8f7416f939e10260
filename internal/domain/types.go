package domain

import "time"

// DateLayout is the calendar-date format used for entry dates
const DateLayout = "2006-01-02"

// User is a registered journal owner
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Gender       string    `json:"gender,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Entry represents one night's dream journal record
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	EntryDate string    `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`

	SleepType            string `json:"sleep_type,omitempty"`
	SleepDurationMinutes *int   `json:"sleep_duration_minutes,omitempty"`
	HadDream             *bool  `json:"had_dream,omitempty"`

	DreamText          string `json:"dream_text"`
	AutoTitle          string `json:"auto_title"`
	UserTitle          string `json:"user_title,omitempty"`
	MoodBeforeSleep    string `json:"mood_before_sleep,omitempty"`
	FeelingAfterWaking string `json:"feeling_after_waking"`

	// DominantEmotion is the label the weekly analytics read. Empty means absent.
	DominantEmotion string `json:"dominant_emotion,omitempty"`

	Emotions []EmotionScore `json:"emotions,omitempty"`
}

// EmotionScore is one (label, score) pair of a classifier ranking
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
