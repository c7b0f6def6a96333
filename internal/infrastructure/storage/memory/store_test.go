package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linksoc/internal/core/apperror"
	"linksoc/internal/domain/audit"
	"linksoc/internal/domain/labels"
)

func TestStore_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Labels().AppendBatch(ctx, []labels.Label{{QRCode: "CG1"}}))

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Labels().AppendBatch(ctx, []labels.Label{{QRCode: "CG2"}}))
		require.NoError(t, s.Reprint().Enqueue(ctx, "X", time.Now()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.Labels().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	queue, err := s.Reprint().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestStore_NestedTransactionReusesOuter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.Labels().AppendBatch(ctx, []labels.Label{{QRCode: "CG1"}})
		})
	})
	require.NoError(t, err)

	all, err := s.Labels().All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLabelRepo_SetIDsAndExisting(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	repo := s.Labels()
	require.NoError(t, repo.AppendBatch(ctx, []labels.Label{{QRCode: "CG1"}, {QRCode: "cg2"}}))

	taken, err := repo.ExistingCodes(ctx, []string{"CG2", "CG3", "cg1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CG2", "cg1"}, taken)

	id := "SEAL"
	_, err = repo.SetIDs(ctx, "CG2", labels.MatchExact, &id, nil)
	assert.True(t, apperror.IsNotFound(err))

	l, err := repo.SetIDs(ctx, "CG2", labels.MatchFold, &id, nil)
	require.NoError(t, err)
	assert.Equal(t, "cg2", l.QRCode)
	assert.Equal(t, "SEAL", l.IDUm)
}

func TestStore_FailOn(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.FailOn("rules.List", errors.New("down"))

	_, err := s.Rules().List(ctx)
	assert.EqualError(t, err, "down")

	s.FailOn("rules.List", nil)
	_, err = s.Rules().List(ctx)
	assert.NoError(t, err)
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Labels().All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, key := range []string{"CG1", "CG2", "CG3"} {
		require.NoError(t, s.Record(ctx, audit.Entry{Entity: "label", EntityKey: key, Action: audit.ActionPrint}))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "CG3", recent[0].EntityKey)
	assert.Equal(t, "CG2", recent[1].EntityKey)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
