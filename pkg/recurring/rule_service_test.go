package recurring

import (
	"context"
	"testing"

	"github.com/kassa/kassa/pkg/ledger"
	"github.com/kassa/kassa/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithOwner(context.Background(), 1)

var ruleRepoStub = NewStubRuleRepo()
var entryRepoStub = ledger.NewStubEntryRepo()

var service Service

func setup(t *testing.T) func() {
	service = NewRuleService(ruleRepoStub, NewMaterializer(ruleRepoStub, entryRepoStub))
	return func() {
		t.Log("Teardown after test")
		ruleRepoStub.Cleanup()
		entryRepoStub.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should create a valid rule as active", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, testRule(t, Monthly, 1, "2024-01-31", ""))

		// then
		assert.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.True(t, created.Active)
	})

	t.Run("should default the interval to 1", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		rule := testRule(t, Weekly, 0, "2024-03-01", "")

		// when
		created, err := service.Create(ctx, rule)

		// then
		assert.NoError(t, err)
		assert.Equal(t, 1, created.Interval)
	})

	t.Run("should reject a negative interval", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		rule := testRule(t, Weekly, -2, "2024-03-01", "")

		// when
		_, err := service.Create(ctx, rule)

		// then
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("should reject an end date before the start date", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		rule := testRule(t, Daily, 1, "2024-06-10", "2024-06-01")

		// when
		_, err := service.Create(ctx, rule)

		// then
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("should reject a non-positive amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		rule := testRule(t, Daily, 1, "2024-06-10", "")
		rule.Amount = decimal.Zero

		// when
		_, err := service.Create(ctx, rule)

		// then
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("should reject an unknown frequency", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, testRule(t, Frequency("hourly"), 1, "2024-06-10", ""))

		// then
		assert.ErrorIs(t, err, ErrInvalidRule)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(context.Background(), testRule(t, Daily, 1, "2024-06-10", ""))

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_Get(t *testing.T) {
	t.Run("should get a rule successfully", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testRule(t, Monthly, 1, "2024-01-31", ""))
		require.NoError(t, err)

		// when
		result, err := service.Get(ctx, created.Id)

		// then
		assert.NoError(t, err)
		assert.Equal(t, created.Id, result.Id)
		assert.Equal(t, "Gym membership", result.Title)
	})

	t.Run("should return ErrRuleNotFound for another user's rule", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testRule(t, Monthly, 1, "2024-01-31", ""))
		require.NoError(t, err)

		// when
		_, err = service.Get(user.WithOwner(context.Background(), 2), created.Id)

		// then
		assert.ErrorIs(t, err, ErrRuleNotFound)
	})
}

func TestServiceImpl_List(t *testing.T) {
	t.Run("should list only active rules when asked", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		active, err := service.Create(ctx, testRule(t, Weekly, 1, "2024-03-01", ""))
		require.NoError(t, err)
		deactivated, err := service.Create(ctx, testRule(t, Daily, 1, "2024-03-01", ""))
		require.NoError(t, err)
		_, err = service.Deactivate(ctx, deactivated.Id)
		require.NoError(t, err)

		// when
		activeRules, err := service.List(ctx, true)
		require.NoError(t, err)
		allRules, err := service.List(ctx, false)
		require.NoError(t, err)

		// then
		assert.Len(t, activeRules, 1)
		assert.Equal(t, active.Id, activeRules[0].Id)
		assert.Len(t, allRules, 2)
	})
}

func TestServiceImpl_Update(t *testing.T) {
	t.Run("should update an existing rule", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testRule(t, Monthly, 1, "2024-01-31", ""))
		require.NoError(t, err)
		created.Title = "Rent"

		// when
		updated, err := service.Update(ctx, created)

		// then
		assert.NoError(t, err)
		assert.Equal(t, "Rent", updated.Title)
	})

	t.Run("should return ErrRuleNotFound for a missing rule", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		rule := testRule(t, Monthly, 1, "2024-01-31", "")
		rule.Id = 42

		// when
		_, err := service.Update(ctx, rule)

		// then
		assert.ErrorIs(t, err, ErrRuleNotFound)
	})
}

func TestServiceImpl_Deactivate(t *testing.T) {
	t.Run("should deactivate an existing rule", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testRule(t, Monthly, 1, "2024-01-31", ""))
		require.NoError(t, err)

		// when
		deactivated, err := service.Deactivate(ctx, created.Id)

		// then
		assert.NoError(t, err)
		assert.True(t, deactivated)
		rule, err := service.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.False(t, rule.Active)
	})

	t.Run("should keep entries materialized before deactivation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, testRule(t, Weekly, 2, "2024-03-01", ""))
		require.NoError(t, err)
		from, to := mustDate(t, "2024-03-01"), mustDate(t, "2024-03-31")
		require.NoError(t, service.Materialize(ctx, from, to))

		// when
		_, err = service.Deactivate(ctx, created.Id)
		require.NoError(t, err)
		require.NoError(t, service.Materialize(ctx, from, to))

		// then
		count, err := entryRepoStub.CountForOwner(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}

func TestServiceImpl_Materialize(t *testing.T) {
	t.Run("should leave the entry count unchanged on a second identical call", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, testRule(t, Monthly, 1, "2024-01-31", ""))
		require.NoError(t, err)
		from, to := mustDate(t, "2024-01-01"), mustDate(t, "2024-04-30")

		// when
		require.NoError(t, service.Materialize(ctx, from, to))
		countAfterFirst, err := entryRepoStub.CountForOwner(ctx, 1)
		require.NoError(t, err)
		require.NoError(t, service.Materialize(ctx, from, to))
		countAfterSecond, err := entryRepoStub.CountForOwner(ctx, 1)
		require.NoError(t, err)

		// then
		assert.Equal(t, 4, countAfterFirst)
		assert.Equal(t, countAfterFirst, countAfterSecond)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		err := service.Materialize(context.Background(), mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}
