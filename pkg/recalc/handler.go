package recalc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hourglass-hq/hourglass/internal/rest"
	"github.com/hourglass-hq/hourglass/internal/utils"
	"github.com/hourglass-hq/hourglass/pkg/estimate"
	"github.com/hourglass-hq/hourglass/pkg/project"
	"github.com/hourglass-hq/hourglass/pkg/rate"
)

type Handler struct {
	engine   Engine
	resolver rate.Resolver
	clock    utils.Clock
}

func NewHandler(engine Engine, resolver rate.Resolver, clock utils.Clock) *Handler {
	return &Handler{engine: engine, resolver: resolver, clock: clock}
}

func (h *Handler) RecalculateProject(w http.ResponseWriter, r *http.Request) {
	projectId, ok := pathInt(w, r, "projectId")
	if !ok {
		return
	}
	h.recalculate(w, r, ProjectScope(projectId))
}

func (h *Handler) RecalculateEstimate(w http.ResponseWriter, r *http.Request) {
	estimateId, ok := pathInt(w, r, "estimateId")
	if !ok {
		return
	}
	h.recalculate(w, r, EstimateScope(estimateId))
}

func (h *Handler) recalculate(w http.ResponseWriter, r *http.Request, scope Scope) {
	w.Header().Set("Content-Type", "application/json")

	dryRun := false
	if raw := r.URL.Query().Get("dryRun"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(w, "Invalid dryRun parameter", "dryRun must be true or false")
			return
		}
		dryRun = parsed
	}

	result, err := h.engine.Recalculate(r.Context(), scope, dryRun)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) || errors.Is(err, estimate.ErrEstimateNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrInvalidScope) {
			writeBadRequest(w, "Invalid recalculation scope", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type resolvePreviewDTO struct {
	BillingRate   *string         `json:"billingRate"`
	CostRate      *string         `json:"costRate"`
	BillingSource string          `json:"billingRateSource"`
	CostSource    string          `json:"costRateSource"`
	Chain         []chainEntryDTO `json:"chain"`
}

type chainEntryDTO struct {
	Tier        string  `json:"tier"`
	BillingRate *string `json:"billingRate"`
	CostRate    *string `json:"costRate"`
}

// ResolvePreview answers "what rate would apply" for a subject on a date
// without touching any record.
func (h *Handler) ResolvePreview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	query := r.URL.Query()
	var subject rate.Subject
	switch rate.SubjectKind(query.Get("subjectKind")) {
	case rate.SubjectPerson:
		personId, err := strconv.Atoi(query.Get("personId"))
		if err != nil {
			writeBadRequest(w, "Invalid personId parameter", "")
			return
		}
		subject = rate.PersonSubject(personId)
	case rate.SubjectRole:
		roleId, err := strconv.Atoi(query.Get("roleId"))
		if err != nil {
			writeBadRequest(w, "Invalid roleId parameter", "")
			return
		}
		subject = rate.RoleSubject(roleId)
	default:
		writeBadRequest(w, "Invalid subjectKind parameter", "subjectKind must be person or role")
		return
	}
	if raw := query.Get("projectId"); raw != "" {
		projectId, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "Invalid projectId parameter", "")
			return
		}
		subject.ProjectId = projectId
	}

	asOf := h.clock.Now()
	if raw := query.Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeBadRequest(w, "Invalid date parameter", "Date must be in YYYY-MM-DD format")
			return
		}
		asOf = parsed
	}

	resolution, err := h.resolver.Resolve(r.Context(), subject, asOf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dto := resolvePreviewDTO{
		BillingRate:   rate.FormatNullableRate(resolution.BillingRate),
		CostRate:      rate.FormatNullableRate(resolution.CostRate),
		BillingSource: string(resolution.BillingSource),
		CostSource:    string(resolution.CostSource),
		Chain:         make([]chainEntryDTO, 0, len(resolution.Chain)),
	}
	for _, entry := range resolution.Chain {
		dto.Chain = append(dto.Chain, chainEntryDTO{
			Tier:        string(entry.Tier),
			BillingRate: rate.FormatNullableRate(entry.BillingRate),
			CostRate:    rate.FormatNullableRate(entry.CostRate),
		})
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
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
