package estimate

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

type EstimateDTO struct {
	Id            int    `json:"id"`
	Name          string `json:"name"`
	ProjectId     int    `json:"projectId"`
	EffectiveDate string `json:"effectiveDate"`
	Status        string `json:"status"`
}

type LineItemDTO struct {
	Id                int     `json:"id"`
	EstimateId        int     `json:"estimateId"`
	Description       string  `json:"description"`
	SubjectKind       string  `json:"subjectKind"`
	PersonId          int     `json:"personId,omitempty"`
	RoleId            int     `json:"roleId,omitempty"`
	Hours             string  `json:"hours"`
	BillingRate       *string `json:"billingRate"`
	CostRate          *string `json:"costRate"`
	ManualBillingRate *string `json:"manualBillingRate,omitempty"`
	ManualCostRate    *string `json:"manualCostRate,omitempty"`
	BillingRateSource string  `json:"billingRateSource"`
	CostRateSource    string  `json:"costRateSource"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateEstimate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto EstimateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return
	}
	if dto.Name == "" {
		writeBadRequest(w, "Estimate name is required", "")
		return
	}
	effectiveDate, err := time.Parse("2006-01-02", dto.EffectiveDate)
	if err != nil {
		writeBadRequest(w, "Invalid effectiveDate format", "Date must be in YYYY-MM-DD format")
		return
	}

	created, err := h.service.Create(r.Context(), Estimate{
		Name:          dto.Name,
		ProjectId:     dto.ProjectId,
		EffectiveDate: effectiveDate,
		Status:        Status(dto.Status),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(estimateToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEstimates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	projectId, ok := pathInt(w, r, "projectId")
	if !ok {
		return
	}
	estimates, err := h.service.GetAllForProject(r.Context(), projectId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]EstimateDTO, 0, len(estimates))
	for _, estimate := range estimates {
		dtos = append(dtos, estimateToDTO(estimate))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := pathInt(w, r, "estimateId")
	if !ok {
		return
	}
	estimate, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEstimateNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(estimateToDTO(estimate)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := pathInt(w, r, "estimateId")
	if !ok {
		return
	}
	var dto struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return
	}
	switch Status(dto.Status) {
	case StatusDraft, StatusSent, StatusApproved, StatusInvoiced:
	default:
		writeBadRequest(w, "Invalid status", "Status must be one of: draft, sent, approved, invoiced")
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

func (h *Handler) DeleteEstimate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "estimateId")
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

func (h *Handler) CreateLineItem(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	estimateId, ok := pathInt(w, r, "estimateId")
	if !ok {
		return
	}
	var dto LineItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return
	}
	hours, err := decimal.NewFromString(dto.Hours)
	if err != nil {
		writeBadRequest(w, "Invalid hours", "Hours must be a decimal number")
		return
	}
	manualBilling, err := rate.ParseNullableRate(dto.ManualBillingRate)
	if err != nil {
		writeBadRequest(w, "Invalid manualBillingRate", err.Error())
		return
	}
	manualCost, err := rate.ParseNullableRate(dto.ManualCostRate)
	if err != nil {
		writeBadRequest(w, "Invalid manualCostRate", err.Error())
		return
	}

	item := LineItem{
		EstimateId:        estimateId,
		Description:       dto.Description,
		SubjectKind:       rate.SubjectKind(dto.SubjectKind),
		PersonId:          dto.PersonId,
		RoleId:            dto.RoleId,
		Hours:             hours,
		ManualBillingRate: manualBilling,
		ManualCostRate:    manualCost,
	}
	created, err := h.service.CreateLineItem(r.Context(), item)
	if err != nil {
		if errors.Is(err, ErrInvalidLineItem) {
			writeBadRequest(w, "Invalid line item", err.Error())
			return
		}
		if errors.Is(err, ErrEstimateNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(lineItemToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetLineItems(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	estimateId, ok := pathInt(w, r, "estimateId")
	if !ok {
		return
	}
	items, err := h.service.GetLineItems(r.Context(), estimateId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]LineItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, lineItemToDTO(item))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteLineItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "lineItemId")
	if !ok {
		return
	}
	deleted, err := h.service.DeleteLineItem(r.Context(), id)
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

func estimateToDTO(estimate Estimate) EstimateDTO {
	return EstimateDTO{
		Id:            estimate.Id,
		Name:          estimate.Name,
		ProjectId:     estimate.ProjectId,
		EffectiveDate: estimate.EffectiveDate.Format("2006-01-02"),
		Status:        string(estimate.Status),
	}
}

func lineItemToDTO(item LineItem) LineItemDTO {
	return LineItemDTO{
		Id:                item.Id,
		EstimateId:        item.EstimateId,
		Description:       item.Description,
		SubjectKind:       string(item.SubjectKind),
		PersonId:          item.PersonId,
		RoleId:            item.RoleId,
		Hours:             item.Hours.String(),
		BillingRate:       rate.FormatNullableRate(item.BillingRate),
		CostRate:          rate.FormatNullableRate(item.CostRate),
		ManualBillingRate: rate.FormatNullableRate(item.ManualBillingRate),
		ManualCostRate:    rate.FormatNullableRate(item.ManualCostRate),
		BillingRateSource: string(item.BillingRateSource),
		CostRateSource:    string(item.CostRateSource),
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
