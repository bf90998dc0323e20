package app

import (
	"github.com/gorilla/mux"
	"github.com/hourglass-hq/hourglass/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Tenants
	r.HandleFunc("/api/tenant", deps.TenantHandler.CreateTenant).Methods("POST")
	r.HandleFunc("/api/tenant", deps.TenantHandler.GetTenants).Methods("GET")
	r.HandleFunc("/api/tenant/current", deps.TenantHandler.CurrentTenant).Methods("GET")

	// Roles
	r.HandleFunc("/api/role", deps.StaffHandler.CreateRole).Methods("POST")
	r.HandleFunc("/api/role", deps.StaffHandler.GetRoles).Methods("GET")
	r.HandleFunc("/api/role/{roleId}", deps.StaffHandler.UpdateRole).Methods("PUT")
	r.HandleFunc("/api/role/{roleId}", deps.StaffHandler.DeleteRole).Methods("DELETE")

	// People
	r.HandleFunc("/api/person", deps.StaffHandler.CreatePerson).Methods("POST")
	r.HandleFunc("/api/person", deps.StaffHandler.GetPersons).Methods("GET")
	r.HandleFunc("/api/person/{personId}", deps.StaffHandler.GetPerson).Methods("GET")
	r.HandleFunc("/api/person/{personId}", deps.StaffHandler.UpdatePerson).Methods("PUT")
	r.HandleFunc("/api/person/{personId}", deps.StaffHandler.DeletePerson).Methods("DELETE")

	// Person rate schedules
	r.HandleFunc("/api/person/{personId}/schedule", deps.RateScheduleHandler.Register).Methods("POST")
	r.HandleFunc("/api/person/{personId}/schedule", deps.RateScheduleHandler.GetSchedules).Methods("GET")
	r.HandleFunc("/api/schedule/{scheduleId}", deps.RateScheduleHandler.Update).Methods("PUT")
	r.HandleFunc("/api/schedule/{scheduleId}", deps.RateScheduleHandler.Delete).Methods("DELETE")

	// Projects
	r.HandleFunc("/api/project", deps.ProjectHandler.CreateProject).Methods("POST")
	r.HandleFunc("/api/project", deps.ProjectHandler.GetProjects).Methods("GET")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.GetProject).Methods("GET")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.UpdateProject).Methods("PUT")
	r.HandleFunc("/api/project/{projectId}", deps.ProjectHandler.DeleteProject).Methods("DELETE")

	// Project rate overrides
	r.HandleFunc("/api/project/{projectId}/override", deps.RateOverrideHandler.Register).Methods("POST")
	r.HandleFunc("/api/project/{projectId}/override", deps.RateOverrideHandler.GetOverrides).Methods("GET")
	r.HandleFunc("/api/override/{overrideId}", deps.RateOverrideHandler.Update).Methods("PUT")
	r.HandleFunc("/api/override/{overrideId}", deps.RateOverrideHandler.Delete).Methods("DELETE")

	// Time entries
	r.HandleFunc("/api/entry", deps.TimeEntryHandler.CreateEntry).Methods("POST")
	r.HandleFunc("/api/entry/{entryId}", deps.TimeEntryHandler.GetEntry).Methods("GET")
	r.HandleFunc("/api/entry/{entryId}/status", deps.TimeEntryHandler.UpdateStatus).Methods("PUT")
	r.HandleFunc("/api/entry/{entryId}", deps.TimeEntryHandler.DeleteEntry).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/entry", deps.TimeEntryHandler.GetEntries).Methods("GET")

	// Estimates
	r.HandleFunc("/api/estimate", deps.EstimateHandler.CreateEstimate).Methods("POST")
	r.HandleFunc("/api/estimate/{estimateId}", deps.EstimateHandler.GetEstimate).Methods("GET")
	r.HandleFunc("/api/estimate/{estimateId}/status", deps.EstimateHandler.UpdateStatus).Methods("PUT")
	r.HandleFunc("/api/estimate/{estimateId}", deps.EstimateHandler.DeleteEstimate).Methods("DELETE")
	r.HandleFunc("/api/project/{projectId}/estimate", deps.EstimateHandler.GetEstimates).Methods("GET")
	r.HandleFunc("/api/estimate/{estimateId}/item", deps.EstimateHandler.CreateLineItem).Methods("POST")
	r.HandleFunc("/api/estimate/{estimateId}/item", deps.EstimateHandler.GetLineItems).Methods("GET")
	r.HandleFunc("/api/item/{lineItemId}", deps.EstimateHandler.DeleteLineItem).Methods("DELETE")

	// Rate resolution and recalculation
	r.HandleFunc("/api/rates/resolve", deps.RecalcHandler.ResolvePreview).Methods("GET")
	r.HandleFunc("/api/project/{projectId}/rates/recalculate", deps.RecalcHandler.RecalculateProject).Methods("POST")
	r.HandleFunc("/api/estimate/{estimateId}/rates/recalculate", deps.RecalcHandler.RecalculateEstimate).Methods("POST")
}
