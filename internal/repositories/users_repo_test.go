package repositories

import (
	"context"
	"testing"
	"time"

	"stocktrack/internal/common"
	"stocktrack/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type UserRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    UserRepository
	userID  uuid.UUID
	context context.Context
}

func (suite *UserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewUserRepository(mock)
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func (suite *UserRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepoTestSuite))
}

func (suite *UserRepoTestSuite) TestCreate_Success() {
	user := &models.User{
		ID:           suite.userID,
		Email:        "ops@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		DisplayName:  "Ops",
		Status:       "active",
	}

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE email = \$1`).
		WithArgs(user.Email).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	suite.mock.ExpectExec(`INSERT INTO users`).
		WithArgs(user.ID, user.Email, user.PasswordHash, user.DisplayName, user.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, user)
	assert.NoError(suite.T(), err)
}

func (suite *UserRepoTestSuite) TestCreate_DuplicateEmail() {
	user := &models.User{
		ID:    suite.userID,
		Email: "ops@example.com",
	}

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE email = \$1`).
		WithArgs(user.Email).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	err := suite.repo.Create(suite.context, user)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *UserRepoTestSuite) TestGetByEmail_Success() {
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "email", "password_hash", "display_name", "status", "created_at", "updated_at"}).
		AddRow(suite.userID, "ops@example.com", "$2a$10$abcdefghijklmnopqrstuv", "Ops", "active", now, now)

	suite.mock.ExpectQuery(`(?s)FROM users\s+WHERE email = \$1`).
		WithArgs("ops@example.com").
		WillReturnRows(rows)

	user, err := suite.repo.GetByEmail(suite.context, "ops@example.com")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.userID, user.ID)
	assert.Equal(suite.T(), "Ops", user.DisplayName)
}

func (suite *UserRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`(?s)FROM users\s+WHERE id = \$1`).
		WithArgs(suite.userID).
		WillReturnError(pgx.ErrNoRows)

	user, err := suite.repo.GetByID(suite.context, suite.userID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), user)
}
