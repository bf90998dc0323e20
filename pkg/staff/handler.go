package staff

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hourglass-hq/hourglass/internal/rest"
	"github.com/hourglass-hq/hourglass/pkg/rate"
	log "github.com/sirupsen/logrus"
)

type RoleDTO struct {
	Id                 int     `json:"id"`
	Name               string  `json:"name"`
	DefaultBillingRate *string `json:"defaultBillingRate"`
	DefaultCostRate    *string `json:"defaultCostRate"`
}

type PersonDTO struct {
	Id                 int     `json:"id"`
	Uid                string  `json:"uid"`
	DisplayName        string  `json:"displayName"`
	RoleId             int     `json:"roleId,omitempty"`
	DefaultBillingRate *string `json:"defaultBillingRate"`
	DefaultCostRate    *string `json:"defaultCostRate"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating role")

	role, ok := decodeRole(w, r)
	if !ok {
		return
	}
	created, err := h.service.CreateRole(r.Context(), role)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(roleToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	roles, err := h.service.GetRoles(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]RoleDTO, 0, len(roles))
	for _, role := range roles {
		dtos = append(dtos, roleToDTO(role))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := pathId(w, r, "roleId")
	if !ok {
		return
	}
	role, ok := decodeRole(w, r)
	if !ok {
		return
	}
	role.Id = id
	updated, err := h.service.UpdateRole(r.Context(), role)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := json.NewEncoder(w).Encode(roleToDTO(role)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r, "roleId")
	if !ok {
		return
	}
	deleted, err := h.service.DeleteRole(r.Context(), id)
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

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Creating person")

	person, ok := decodePerson(w, r)
	if !ok {
		return
	}
	if person.DisplayName == "" {
		w.WriteHeader(http.StatusBadRequest)
		encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "Display name is required",
		})
		if encodeErr != nil {
			http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
		}
		return
	}
	created, err := h.service.CreatePerson(r.Context(), person)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(personToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := pathId(w, r, "personId")
	if !ok {
		return
	}
	person, err := h.service.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPersonNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(personToDTO(person)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetPersons(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	persons, err := h.service.GetPersons(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]PersonDTO, 0, len(persons))
	for _, person := range persons {
		dtos = append(dtos, personToDTO(person))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	id, ok := pathId(w, r, "personId")
	if !ok {
		return
	}
	person, ok := decodePerson(w, r)
	if !ok {
		return
	}
	person.Id = id
	updated, err := h.service.UpdatePerson(r.Context(), person)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !updated {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err := json.NewEncoder(w).Encode(personToDTO(person)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r, "personId")
	if !ok {
		return
	}
	deleted, err := h.service.DeletePerson(r.Context(), id)
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

func decodeRole(w http.ResponseWriter, r *http.Request) (Role, bool) {
	var dto RoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return Role{}, false
	}
	billing, err := rate.ParseNullableRate(dto.DefaultBillingRate)
	if err != nil {
		writeBadRequest(w, "Invalid defaultBillingRate", err.Error())
		return Role{}, false
	}
	cost, err := rate.ParseNullableRate(dto.DefaultCostRate)
	if err != nil {
		writeBadRequest(w, "Invalid defaultCostRate", err.Error())
		return Role{}, false
	}
	return Role{Id: dto.Id, Name: dto.Name, DefaultBillingRate: billing, DefaultCostRate: cost}, true
}

func decodePerson(w http.ResponseWriter, r *http.Request) (Person, bool) {
	var dto PersonDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeBadRequest(w, "Invalid request body format", "")
		return Person{}, false
	}
	billing, err := rate.ParseNullableRate(dto.DefaultBillingRate)
	if err != nil {
		writeBadRequest(w, "Invalid defaultBillingRate", err.Error())
		return Person{}, false
	}
	cost, err := rate.ParseNullableRate(dto.DefaultCostRate)
	if err != nil {
		writeBadRequest(w, "Invalid defaultCostRate", err.Error())
		return Person{}, false
	}
	return Person{
		Id:                 dto.Id,
		Uid:                dto.Uid,
		DisplayName:        dto.DisplayName,
		RoleId:             dto.RoleId,
		DefaultBillingRate: billing,
		DefaultCostRate:    cost,
	}, true
}

func roleToDTO(role Role) RoleDTO {
	return RoleDTO{
		Id:                 role.Id,
		Name:               role.Name,
		DefaultBillingRate: rate.FormatNullableRate(role.DefaultBillingRate),
		DefaultCostRate:    rate.FormatNullableRate(role.DefaultCostRate),
	}
}

func personToDTO(person Person) PersonDTO {
	return PersonDTO{
		Id:                 person.Id,
		Uid:                person.Uid,
		DisplayName:        person.DisplayName,
		RoleId:             person.RoleId,
		DefaultBillingRate: rate.FormatNullableRate(person.DefaultBillingRate),
		DefaultCostRate:    rate.FormatNullableRate(person.DefaultCostRate),
	}
}

func pathId(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil {
		writeBadRequest(w, "Invalid "+name+" format", "Parameter "+name+" must be a number")
		return 0, false
	}
	return int(id), true
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
