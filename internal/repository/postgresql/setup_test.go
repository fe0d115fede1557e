package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testGuildID = "100000000000000001"

// setupTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// every table. Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `TRUNCATE TABLE compliance_events, attendances, leave_requests, employees CASCADE`)
	require.NoError(t, err)

	return db
}

func createTestEmployee(t *testing.T, db *database.DB, userID, name string) employee.Employee {
	t.Helper()

	repo := postgresql.NewEmployeeRepository(db)
	emp, err := repo.Upsert(context.Background(), employee.Employee{
		ID:          uuid.Must(uuid.NewV7()).String(),
		GuildID:     testGuildID,
		UserID:      userID,
		DisplayName: name,
		Role:        employee.RoleEmployee,
		IsActive:    true,
	})
	require.NoError(t, err)
	return emp
}
