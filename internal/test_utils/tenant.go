package test_utils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hourglass-hq/hourglass/pkg/tenant"
)

// SeedTenant inserts a tenant row and returns a context carrying it, the
// way the tenant middleware would for a real request.
func SeedTenant(t *testing.T, db *sql.DB) context.Context {
	t.Helper()

	result, err := db.Exec("INSERT INTO tenant (uid, name) VALUES (?, ?)", "test-tenant", "Test Tenant")
	if err != nil {
		t.Fatalf("Failed to seed tenant: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read tenant id: %v", err)
	}

	return tenant.WithTenant(context.Background(), tenant.Tenant{
		Id:   int(id),
		Uid:  "test-tenant",
		Name: "Test Tenant",
	})
}
