package time_entry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hourglass-hq/hourglass/internal/rest"
	"github.com/hourglass-hq/hourglass/pkg/rate"
	"github.com/shopspring/decimal"
)

type TimeEntryDTO struct {
	Id                int     `json:"id"`
	Uid               string  `json:"uid"`
	PersonId          int     `json:"personId"`
	ProjectId         int     `json:"projectId"`
	Date              string  `json:"date"`
	Hours             string  `json:"hours"`
	Billable          bool    `json:"billable"`
	Description       string  `json:"description,omitempty"`
	BillingRate       *string `json:"billingRate"`
	CostRate          *string `json:"costRate"`
	BillingRateSource string  `json:"billingRateSource"`
	CostRateSource    string  `json:"costRateSource"`
	Status            string  `json:"status"`
}

type StatusUpdateDTO struct {
	Status string `json:"status"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto TimeEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return
	}
	date, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		writeBadRequest(w, "Invalid date format", "Date must be in YYYY-MM-DD format")
		return
	}
	hours, err := decimal.NewFromString(dto.Hours)
	if err != nil || !hours.IsPositive() {
		writeBadRequest(w, "Invalid hours", "Hours must be a positive decimal number")
		return
	}

	entry := TimeEntry{
		PersonId:    dto.PersonId,
		ProjectId:   dto.ProjectId,
		Date:        date,
		Hours:       hours,
		Billable:    dto.Billable,
		Description: dto.Description,
		Status:      Status(dto.Status),
	}
	created, err := h.service.Create(r.Context(), entry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(entryToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	projectId, ok := pathInt(w, r, "projectId")
	if !ok {
		return
	}
	entries, err := h.service.GetAllForProject(r.Context(), projectId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]TimeEntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, entryToDTO(entry))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := pathInt(w, r, "entryId")
	if !ok {
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(entryToDTO(entry)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := pathInt(w, r, "entryId")
	if !ok {
		return
	}
	var dto StatusUpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return
	}
	switch Status(dto.Status) {
	case StatusOpen, StatusSubmitted, StatusApproved, StatusInvoiced:
	default:
		writeBadRequest(w, "Invalid status", "Status must be one of: open, submitted, approved, invoiced")
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), id, Status(dto.Status))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "entryId")
	if !ok {
		return
	}
	deleted, err := h.service.Delete(r.Context(), id)
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

func entryToDTO(entry TimeEntry) TimeEntryDTO {
	return TimeEntryDTO{
		Id:                entry.Id,
		Uid:               entry.Uid,
		PersonId:          entry.PersonId,
		ProjectId:         entry.ProjectId,
		Date:              entry.Date.Format("2006-01-02"),
		Hours:             entry.Hours.String(),
		Billable:          entry.Billable,
		Description:       entry.Description,
		BillingRate:       rate.FormatNullableRate(entry.BillingRate),
		CostRate:          rate.FormatNullableRate(entry.CostRate),
		BillingRateSource: string(entry.BillingRateSource),
		CostRateSource:    string(entry.CostRateSource),
		Status:            string(entry.Status),
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
