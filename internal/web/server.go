package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Marczeeee/allianz-calendar-app/internal/calendar"
	"github.com/Marczeeee/allianz-calendar-app/internal/db"
)

// Store is the persistence surface the HTTP boundary needs.
type Store interface {
	CreateValidated(ctx context.Context, candidate calendar.Reservation, now time.Time) (calendar.Reservation, error)
	ListByStartBetween(ctx context.Context, from, to time.Time) ([]calendar.Reservation, error)
	FindContaining(ctx context.Context, instant time.Time) (calendar.Reservation, error)
}

type Server struct {
	Store Store
	Log   *zap.Logger

	// Now is the server clock; nil means time.Now. Injected so handlers stay
	// deterministic under test.
	Now func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/reservation", s.handleCreateReservation)
	mux.HandleFunc("/reservations/weekly", s.handleWeeklySchedule)
	mux.HandleFunc("/reservations/freehours/day", s.handleDailyOpenSlots)
	mux.HandleFunc("/reservations/freehours/week", s.handleWeeklyOpenSlots)
	mux.HandleFunc("/reservations/personname/bydate", s.handlePersonNameByDate)

	return Chain(mux, WithRequestID, WithAccessLog(s.Log))
}

type reservationRequest struct {
	BookingPersonName string    `json:"bookingPersonName"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
}

// Field-presence messages, reported per field before the validator runs.
func (req reservationRequest) fieldErrors() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(req.BookingPersonName) == "" {
		errs["bookingPersonName"] = "Name of the person is mandatory"
	}
	if req.StartDate.IsZero() {
		errs["startDate"] = "Reservation start date is mandatory"
	}
	if req.EndDate.IsZero() {
		errs["endDate"] = "Reservation end date is mandatory"
	}
	return errs
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if errs := req.fieldErrors(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	candidate := calendar.Reservation{
		BookingPersonName: req.BookingPersonName,
		StartAt:           req.StartDate,
		EndAt:             req.EndDate,
	}

	created, err := s.Store.CreateValidated(r.Context(), candidate, s.now())
	if err != nil {
		var verr *calendar.ValidationError
		if errors.As(err, &verr) {
			s.Log.Info("reservation rejected",
				zap.String("reason", string(verr.Code)),
				zap.Time("start", candidate.StartAt),
				zap.Time("end", candidate.EndAt),
			)
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		s.Log.Error("create reservation", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Log.Info("reservation created",
		zap.String("id", created.ID.String()),
		zap.Time("start", created.StartAt),
		zap.Time("end", created.EndAt),
	)
	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := s.now()
	from := calendar.StartOfWorkWeek(now)
	to := calendar.EndOfWorkWeek(now)

	list, err := s.Store.ListByStartBetween(r.Context(), from, to)
	if err != nil {
		s.Log.Error("weekly schedule", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []calendar.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDailyOpenSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	slots, err := calendar.OpenSlotsAt(r.Context(), s.now(), s.Store)
	s.writeOpenSlots(w, slots, err)
}

func (s *Server) handleWeeklyOpenSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	slots, err := calendar.OpenSlotsForWeek(r.Context(), s.now(), s.Store)
	s.writeOpenSlots(w, slots, err)
}

func (s *Server) writeOpenSlots(w http.ResponseWriter, slots []calendar.OpenSlot, err error) {
	if err != nil {
		if errors.Is(err, calendar.ErrNotAWeekday) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Log.Error("open slots", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []calendar.OpenSlot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

// queryDateLayout is the dateString format of the person-name lookup
// (two-digit year, e.g. "25.01.08 10:30").
const queryDateLayout = "06.01.02 15:04"

func (s *Server) handlePersonNameByDate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dateString := r.URL.Query().Get("dateString")
	instant, err := time.ParseInLocation(queryDateLayout, dateString, time.Local)
	if err != nil {
		http.Error(w, "invalid dateString, expected format "+queryDateLayout, http.StatusBadRequest)
		return
	}

	entry, err := s.Store.FindContaining(r.Context(), instant)
	if err != nil {
		if db.IsNotFound(err) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("No reservation is available at the specified date and time."))
			return
		}
		s.Log.Error("person name by date", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(entry.BookingPersonName))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Start serves h on addr until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}
