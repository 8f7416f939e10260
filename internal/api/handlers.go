package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/JANE7J/DreamBalance-v2/internal/account"
	"github.com/JANE7J/DreamBalance-v2/internal/auth"
	"github.com/JANE7J/DreamBalance-v2/internal/domain"
	"github.com/JANE7J/DreamBalance-v2/internal/journal"
)

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EntryRequest is the request body for creating or editing an entry
type EntryRequest struct {
	EntryDate            string `json:"entry_date"`
	Description          string `json:"description"`
	Mood                 string `json:"mood"`
	Title                string `json:"title"`
	MoodBeforeSleep      string `json:"mood_before_sleep"`
	SleepType            string `json:"sleep_type"`
	SleepDurationMinutes *int   `json:"sleep_duration_minutes"`
	HadDream             *bool  `json:"had_dream"`
}

func (req EntryRequest) input() journal.EntryInput {
	return journal.EntryInput{
		EntryDate:            req.EntryDate,
		Description:          req.Description,
		Mood:                 req.Mood,
		Title:                req.Title,
		MoodBeforeSleep:      req.MoodBeforeSleep,
		SleepType:            req.SleepType,
		SleepDurationMinutes: req.SleepDurationMinutes,
		HadDream:             req.HadDream,
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.accounts.Register(r.Context(), account.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	now := s.now()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "year must be a number")
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be a number")
			return
		}
		month = n
	}

	entries, err := s.journal.ListMonth(r.Context(), userID, year, month)
	if err != nil {
		fail(w, r, err)
		return
	}

	// The web client iterates the body directly, so it is a bare array
	if entries == nil {
		entries = []domain.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.journal.Create(r.Context(), userID, req.input())
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := s.journal.Get(r.Context(), userID, id)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) updateEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.journal.Update(r.Context(), userID, id, req.input())
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := s.journal.Delete(r.Context(), userID, id); err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) weeklyAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	report, err := s.analytics.WeeklyReport(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return 0, false
	}
	return id, true
}
