package recurring

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kassa/kassa/internal/test_utils"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, RuleRepo, int) {
	ctx := context.Background()
	db := openDb()
	repository := NewRuleRepo(db)
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	userId := 1
	return ctx, repository, userId
}

func TestRuleRepoImpl_Store(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)

	// when
	ruleId, err := repo.Store(ctx, userId, testRule(t, Monthly, 1, "2024-01-31", ""))
	assert.NoError(t, err)

	// then
	stored, err := repo.FindById(ctx, userId, ruleId)
	assert.NoError(t, err)
	assert.Equal(t, "Gym membership", stored.Title)
	assert.Equal(t, Monthly, stored.Frequency)
	assert.Equal(t, 1, stored.Interval)
	assert.Equal(t, "40", stored.Amount.String())
	assert.Equal(t, "2024-01-31", stored.StartDate.String())
	assert.True(t, stored.EndDate.IsZero())
	assert.True(t, stored.Active)
}

func TestRuleRepoImpl_Store_WithEndDate(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)

	// when
	ruleId, err := repo.Store(ctx, userId, testRule(t, Daily, 3, "2024-06-10", "2024-06-19"))
	assert.NoError(t, err)

	// then
	stored, err := repo.FindById(ctx, userId, ruleId)
	assert.NoError(t, err)
	assert.Equal(t, "2024-06-19", stored.EndDate.String())
}

func TestRuleRepoImpl_FindById_ShouldNotReturnAnotherUsersRule(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	ruleId, err := repo.Store(ctx, userId, testRule(t, Weekly, 2, "2024-03-01", ""))
	require.NoError(t, err)

	// when
	_, err = repo.FindById(ctx, userId+1, ruleId)

	// then
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestRuleRepoImpl_FindAll(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	activeId, err := repo.Store(ctx, userId, testRule(t, Weekly, 1, "2024-03-01", ""))
	require.NoError(t, err)
	inactiveId, err := repo.Store(ctx, userId, testRule(t, Daily, 1, "2024-03-01", ""))
	require.NoError(t, err)
	_, err = repo.SetActive(ctx, userId, inactiveId, false)
	require.NoError(t, err)

	// when
	activeRules, err := repo.FindAll(ctx, userId, true)
	assert.NoError(t, err)
	allRules, err := repo.FindAll(ctx, userId, false)
	assert.NoError(t, err)

	// then
	assert.Len(t, activeRules, 1)
	assert.Equal(t, activeId, activeRules[0].Id)
	assert.Len(t, allRules, 2)
}

func TestRuleRepoImpl_Update(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	ruleId, err := repo.Store(ctx, userId, testRule(t, Monthly, 1, "2024-01-31", ""))
	require.NoError(t, err)
	rule, err := repo.FindById(ctx, userId, ruleId)
	require.NoError(t, err)

	// when
	rule.Title = "Rent"
	rule.Interval = 2
	updated, err := repo.Update(ctx, userId, rule)

	// then
	assert.NoError(t, err)
	assert.True(t, updated)
	stored, err := repo.FindById(ctx, userId, ruleId)
	require.NoError(t, err)
	assert.Equal(t, "Rent", stored.Title)
	assert.Equal(t, 2, stored.Interval)
}

func TestRuleRepoImpl_Update_ShouldReportMissingRule(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	rule := testRule(t, Monthly, 1, "2024-01-31", "")
	rule.Id = 99999

	// when
	updated, err := repo.Update(ctx, userId, rule)

	// then
	assert.NoError(t, err)
	assert.False(t, updated)
}

func TestRuleRepoImpl_SetActive(t *testing.T) {
	// given
	ctx, repo, userId := setupTestRepository(t)
	ruleId, err := repo.Store(ctx, userId, testRule(t, Yearly, 1, "2024-02-29", ""))
	require.NoError(t, err)

	// when
	ok, err := repo.SetActive(ctx, userId, ruleId, false)

	// then
	assert.NoError(t, err)
	assert.True(t, ok)
	stored, err := repo.FindById(ctx, userId, ruleId)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}
