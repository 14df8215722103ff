package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/auth"
	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/httpx"
	"github.com/DaBoss786/MedSwipe-testing2-sub000/internal/progress"
)

const defaultCategory = "Uncategorized"

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Category   string `json:"category"`
	IsCorrect  bool   `json:"is_correct"`
	TimeSpent  int    `json:"time_spent"` // in seconds
}

type reviewRequest struct {
	QuestionID string `json:"question_id"`
	IsCorrect  bool   `json:"is_correct"`
	Difficulty string `json:"difficulty"`
}

// RegisterRoutes registers all progress routes
func RegisterRoutes(r chi.Router, service progress.Service, maxLeaderboardEntries int) {
	r.Route("/v1/progress", func(r chi.Router) {
		r.Get("/", getSummary(service))
		r.Get("/dashboard", getDashboard(service))
		r.Post("/answers", recordAnswer(service))
		r.Post("/reviews", recordReview(service))
		r.Get("/reviews/due", getReviewQueue(service))
		r.Post("/reset", resetProgress(service))
	})

	r.Get("/v1/leaderboard", getLeaderboard(service, maxLeaderboardEntries))
}

func recordAnswer(service progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			httpx.WriteError(w, r, "unauthorized", "user ID required")
			return
		}

		var req answerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, r, "bad_request", "invalid request body")
			return
		}
		if req.Category == "" {
			req.Category = defaultCategory
		}
		if req.TimeSpent < 0 {
			req.TimeSpent = 0
		}

		result, err := service.RecordAnswer(r.Context(), userID, progress.AnswerInput{
			QuestionID: req.QuestionID,
			Category:   req.Category,
			IsCorrect:  req.IsCorrect,
			TimeSpent:  req.TimeSpent,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, result)
	}
}

func recordReview(service progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			httpx.WriteError(w, r, "unauthorized", "user ID required")
			return
		}

		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, r, "bad_request", "invalid request body")
			return
		}

		result, err := service.RecordReview(r.Context(), userID, progress.ReviewInput{
			QuestionID: req.QuestionID,
			IsCorrect:  req.IsCorrect,
			Difficulty: progress.Difficulty(req.Difficulty),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, result)
	}
}

func getReviewQueue(service progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			httpx.WriteError(w, r, "unauthorized", "user ID required")
			return
		}

		asOf, err := parseAsOfDate(r.URL.Query().Get("date"))
		if err != nil {
			httpx.WriteError(w, r, "bad_request", "invalid date format, use YYYY-MM-DD")
			return
		}

		queue, err := service.GetReviewQueue(r.Context(), userID, asOf)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, queue)
	}
}

func getSummary(service progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			httpx.WriteError(w, r, "unauthorized", "user ID required")
			return
		}

		summary, err := service.GetSummary(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, summary)
	}
}

func getDashboard(service progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			httpx.WriteError(w, r, "unauthorized", "user ID required")
			return
		}

		asOf, err := parseAsOfDate(r.URL.Query().Get("date"))
		if err != nil {
			httpx.WriteError(w, r, "bad_request", "invalid date format, use YYYY-MM-DD")
			return
		}

		dashboard, err := service.GetDashboard(r.Context(), userID, asOf)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, dashboard)
	}
}

func resetProgress(service progress.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(r)
		if !ok {
			httpx.WriteError(w, r, "unauthorized", "user ID required")
			return
		}

		if err := service.ResetProgress(r.Context(), userID); err != nil {
			writeServiceError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}

func getLeaderboard(service progress.Service, maxEntries int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		if limit > maxEntries {
			limit = maxEntries
		}

		entries, err := service.Leaderboard(r.Context(), limit)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

// requestUserID resolves the acting user from the auth middleware context,
// falling back to the x-user-id header for internal calls.
func requestUserID(r *http.Request) (string, bool) {
	if user, ok := auth.UserFromContext(r.Context()); ok && user.UserID != "" {
		return user.UserID, true
	}
	if userID := r.Header.Get("x-user-id"); userID != "" {
		return userID, true
	}
	return "", false
}

func parseAsOfDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil // service substitutes its clock
	}
	return time.Parse("2006-01-02", raw)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, progress.ErrMissingUserID),
		errors.Is(err, progress.ErrMissingQuestionID),
		errors.Is(err, progress.ErrInvalidDifficulty):
		httpx.WriteError(w, r, "bad_request", err.Error())
	default:
		httpx.WriteError(w, r, "internal", err.Error())
	}
}
