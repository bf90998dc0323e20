package rate_override

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

type RateOverrideDTO struct {
	ID             int     `json:"id"`
	ProjectID      int     `json:"projectId"`
	SubjectKind    string  `json:"subjectKind"`
	SubjectID      int     `json:"subjectId"`
	BillingRate    *string `json:"billingRate"`
	CostRate       *string `json:"costRate"`
	EffectiveStart string  `json:"effectiveStart"`
	EffectiveEnd   *string `json:"effectiveEnd"`
	Notes          *string `json:"notes"`
	LineItemIDs    []int   `json:"lineItemIds,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	projectId, ok := pathInt(w, r, "projectId")
	if !ok {
		return
	}
	override, ok := decodeOverride(w, r)
	if !ok {
		return
	}
	override.ProjectID = projectId

	stored, err := h.service.Store(r.Context(), override)
	if err != nil {
		if errors.Is(err, ErrInvalidOverride) {
			writeBadRequest(w, "Invalid rate override", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(overrideToDTO(stored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetOverrides(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	projectId, ok := pathInt(w, r, "projectId")
	if !ok {
		return
	}
	overrides, err := h.service.GetAllForProject(r.Context(), projectId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]RateOverrideDTO, 0, len(overrides))
	for _, override := range overrides {
		dtos = append(dtos, overrideToDTO(override))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	overrideId, ok := pathInt(w, r, "overrideId")
	if !ok {
		return
	}
	override, ok := decodeOverride(w, r)
	if !ok {
		return
	}
	override.ID = overrideId

	updated, err := h.service.Update(r.Context(), override)
	if err != nil {
		if errors.Is(err, ErrInvalidOverride) {
			writeBadRequest(w, "Invalid rate override", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := json.NewEncoder(w).Encode(overrideToDTO(override)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	overrideId, ok := pathInt(w, r, "overrideId")
	if !ok {
		return
	}
	deleted, err := h.service.Delete(r.Context(), overrideId)
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

func decodeOverride(w http.ResponseWriter, r *http.Request) (RateOverride, bool) {
	var dto RateOverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return RateOverride{}, false
	}

	effectiveStart, err := time.Parse("2006-01-02", dto.EffectiveStart)
	if err != nil {
		writeBadRequest(w, "Invalid effectiveStart format", "Effective start must be a date in YYYY-MM-DD format")
		return RateOverride{}, false
	}
	var effectiveEnd *time.Time
	if dto.EffectiveEnd != nil {
		end, err := time.Parse("2006-01-02", *dto.EffectiveEnd)
		if err != nil {
			writeBadRequest(w, "Invalid effectiveEnd format", "Effective end must be a date in YYYY-MM-DD format")
			return RateOverride{}, false
		}
		effectiveEnd = &end
	}
	billing, err := rate.ParseNullableRate(dto.BillingRate)
	if err != nil {
		writeBadRequest(w, "Invalid billingRate", err.Error())
		return RateOverride{}, false
	}
	cost, err := rate.ParseNullableRate(dto.CostRate)
	if err != nil {
		writeBadRequest(w, "Invalid costRate", err.Error())
		return RateOverride{}, false
	}

	return RateOverride{
		ID:             dto.ID,
		ProjectID:      dto.ProjectID,
		SubjectKind:    rate.SubjectKind(dto.SubjectKind),
		SubjectID:      dto.SubjectID,
		BillingRate:    billing,
		CostRate:       cost,
		EffectiveStart: effectiveStart,
		EffectiveEnd:   effectiveEnd,
		Notes:          dto.Notes,
		LineItemIDs:    dto.LineItemIDs,
	}, true
}

func overrideToDTO(override RateOverride) RateOverrideDTO {
	var end *string
	if override.EffectiveEnd != nil {
		s := override.EffectiveEnd.Format("2006-01-02")
		end = &s
	}
	return RateOverrideDTO{
		ID:             override.ID,
		ProjectID:      override.ProjectID,
		SubjectKind:    string(override.SubjectKind),
		SubjectID:      override.SubjectID,
		BillingRate:    rate.FormatNullableRate(override.BillingRate),
		CostRate:       rate.FormatNullableRate(override.CostRate),
		EffectiveStart: override.EffectiveStart.Format("2006-01-02"),
		EffectiveEnd:   end,
		Notes:          override.Notes,
		LineItemIDs:    override.LineItemIDs,
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
