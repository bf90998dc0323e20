package project

type Status string

const (
	StatusActive   Status = "active"
	StatusOnHold   Status = "on_hold"
	StatusArchived Status = "archived"
)

// Project is one client engagement. Time entries and estimates hang off it,
// and project-scoped rate overrides are bound to its id.
type Project struct {
	Id         int
	Name       string
	ClientName string
	Status     Status
}
