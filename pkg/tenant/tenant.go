package tenant

// Tenant is one customer organization. Every record in the system belongs to
// exactly one tenant, and every repository call is scoped by its id.
type Tenant struct {
	Id   int
	Uid  string
	Name string
}
