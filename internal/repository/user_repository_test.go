package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/timesheet-api/internal/models"
)

func userRows(users ...models.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "role", "department", "manager_id", "active", "created_at", "updated_at",
	})
	for _, u := range users {
		rows.AddRow(u.ID, u.Email, u.PasswordHash, u.FullName, string(u.Role), u.Department, u.ManagerID, u.Active, u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func TestUserFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	user := models.User{
		ID: "u-1", Email: "jess@example.com", PasswordHash: "hash", FullName: "Jess Doe",
		Role: models.RoleEmployee, Department: "Engineering", Active: true, CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, department, manager_id, active, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("jess@example.com").
		WillReturnRows(userRows(user))

	found, err := repo.FindByEmail(context.Background(), "jess@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", found.ID)
	assert.Equal(t, models.RoleEmployee, found.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .* FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, department, manager_id, active, created_at, updated_at FROM users WHERE id = ANY($1)")).
		WillReturnRows(userRows(
			models.User{ID: "u-1", Email: "a@example.com", Role: models.RoleEmployee, Active: true, CreatedAt: now, UpdatedAt: now},
			models.User{ID: "u-2", Email: "b@example.com", Role: models.RoleManager, Active: true, CreatedAt: now, UpdatedAt: now},
		))

	users, err := repo.FindByIDs(context.Background(), []string{"u-1", "u-2"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByIDsEmptyInput(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	users, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindManagedBy(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	managerID := "mgr-1"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, full_name, role, department, manager_id, active, created_at, updated_at FROM users WHERE manager_id = $1")).
		WithArgs("mgr-1").
		WillReturnRows(userRows(
			models.User{ID: "u-1", Email: "a@example.com", Role: models.RoleEmployee, ManagerID: &managerID, Active: true, CreatedAt: now, UpdatedAt: now},
		))

	users, err := repo.FindManagedBy(context.Background(), "mgr-1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u-1", users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Email: "new@example.com", PasswordHash: "hash", FullName: "New User",
		Role: models.RoleEmployee, Department: "Engineering", Active: true,
	}
	err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
