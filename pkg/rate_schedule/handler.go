package rate_schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hourglass-hq/hourglass/internal/rest"
	"github.com/hourglass-hq/hourglass/pkg/rate"
)

type RateScheduleDTO struct {
	ID             int     `json:"id"`
	PersonID       int     `json:"personId"`
	BillingRate    *string `json:"billingRate"`
	CostRate       *string `json:"costRate"`
	EffectiveStart string  `json:"effectiveStart"`
	EffectiveEnd   *string `json:"effectiveEnd"`
	Notes          *string `json:"notes"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	personId, ok := pathInt(w, r, "personId")
	if !ok {
		return
	}
	schedule, ok := decodeSchedule(w, r)
	if !ok {
		return
	}
	schedule.PersonID = personId

	stored, err := h.service.Store(r.Context(), schedule)
	if err != nil {
		if errors.Is(err, ErrInvalidSchedule) {
			writeBadRequest(w, "Invalid rate schedule", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(scheduleToDTO(stored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	personId, ok := pathInt(w, r, "personId")
	if !ok {
		return
	}
	schedules, err := h.service.GetAllForPerson(r.Context(), personId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]RateScheduleDTO, 0, len(schedules))
	for _, schedule := range schedules {
		dtos = append(dtos, scheduleToDTO(schedule))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	scheduleId, ok := pathInt(w, r, "scheduleId")
	if !ok {
		return
	}
	schedule, ok := decodeSchedule(w, r)
	if !ok {
		return
	}
	schedule.ID = scheduleId

	updated, err := h.service.Update(r.Context(), schedule)
	if err != nil {
		if errors.Is(err, ErrInvalidSchedule) {
			writeBadRequest(w, "Invalid rate schedule", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := json.NewEncoder(w).Encode(scheduleToDTO(schedule)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	scheduleId, ok := pathInt(w, r, "scheduleId")
	if !ok {
		return
	}
	deleted, err := h.service.Delete(r.Context(), scheduleId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeSchedule(w http.ResponseWriter, r *http.Request) (RateSchedule, bool) {
	var dto RateScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return RateSchedule{}, false
	}

	effectiveStart, err := time.Parse("2006-01-02", dto.EffectiveStart)
	if err != nil {
		writeBadRequest(w, "Invalid effectiveStart format", "Effective start must be a date in YYYY-MM-DD format")
		return RateSchedule{}, false
	}
	var effectiveEnd *time.Time
	if dto.EffectiveEnd != nil {
		end, err := time.Parse("2006-01-02", *dto.EffectiveEnd)
		if err != nil {
			writeBadRequest(w, "Invalid effectiveEnd format", "Effective end must be a date in YYYY-MM-DD format")
			return RateSchedule{}, false
		}
		effectiveEnd = &end
	}
	billing, err := rate.ParseNullableRate(dto.BillingRate)
	if err != nil {
		writeBadRequest(w, "Invalid billingRate", err.Error())
		return RateSchedule{}, false
	}
	cost, err := rate.ParseNullableRate(dto.CostRate)
	if err != nil {
		writeBadRequest(w, "Invalid costRate", err.Error())
		return RateSchedule{}, false
	}

	return RateSchedule{
		ID:             dto.ID,
		PersonID:       dto.PersonID,
		BillingRate:    billing,
		CostRate:       cost,
		EffectiveStart: effectiveStart,
		EffectiveEnd:   effectiveEnd,
		Notes:          dto.Notes,
	}, true
}

func scheduleToDTO(schedule RateSchedule) RateScheduleDTO {
	var end *string
	if schedule.EffectiveEnd != nil {
		s := schedule.EffectiveEnd.Format("2006-01-02")
		end = &s
	}
	return RateScheduleDTO{
		ID:             schedule.ID,
		PersonID:       schedule.PersonID,
		BillingRate:    rate.FormatNullableRate(schedule.BillingRate),
		CostRate:       rate.FormatNullableRate(schedule.CostRate),
		EffectiveStart: schedule.EffectiveStart.Format("2006-01-02"),
		EffectiveEnd:   end,
		Notes:          schedule.Notes,
	}
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	vars := mux.Vars(r)
	value, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil {
		writeBadRequest(w, "Invalid "+name+" format", "Parameter "+name+" must be a number")
		return 0, false
	}
	return int(value), true
}

func writeBadRequest(w http.ResponseWriter, message string, details string) {
	w.WriteHeader(http.StatusBadRequest)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error:   message,
		Details: details,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}
