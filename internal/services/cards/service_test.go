package cards

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/qsl-cards-backend/internal/data/collection"
	types "github.com/yungbote/qsl-cards-backend/internal/domain/cards"
	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
)

var testKeys = Keys{Sent: "sent.json", Received: "received.json"}

func newTestService(t *testing.T) (Service, *objstore.Memory) {
	t.Helper()
	mem := objstore.NewMemory()
	store := collection.New(logger.Nop(), mem, "memory")
	svc := NewService(logger.Nop(), store, testKeys,
		WithClock(func() time.Time { return time.Date(2024, 2, 20, 8, 0, 0, 0, time.UTC) }),
		WithGrowthSource(FixedGrowth{}),
	)
	return svc, mem
}

func TestSaveAndListByRole(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, types.RoleSent, validSent())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.UpdatedAt.Before(saved.CreatedAt))

	sent, err := svc.List(ctx, types.RoleSent)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, saved.ID, sent[0].ID)

	received, err := svc.List(ctx, types.RoleReceived)
	require.NoError(t, err)
	assert.Empty(t, received)

	_, ok := mem.Raw(testKeys.Received)
	assert.False(t, ok)
}

func TestSaveInvalidCardNeverTouchesStore(t *testing.T) {
	svc, mem := newTestService(t)
	c := validSent()
	c.CardType = "stamp"

	_, err := svc.Save(context.Background(), types.RoleSent, c)
	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
	gets, puts := mem.Calls()
	assert.Zero(t, gets)
	assert.Zero(t, puts)
}

func TestDeleteMissingCard(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()
	_, err := svc.Save(ctx, types.RoleSent, validSent())
	require.NoError(t, err)
	before, _ := mem.Raw(testKeys.Sent)

	err = svc.Delete(ctx, types.RoleSent, "missing")
	assert.True(t, errors.Is(err, types.ErrCardNotFound))
	after, _ := mem.Raw(testKeys.Sent)
	assert.Equal(t, string(before), string(after))

	err = svc.Delete(ctx, types.RoleSent, "")
	assert.True(t, errors.Is(err, types.ErrIDRequired))
}

func TestDeleteRemovesCard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	saved, err := svc.Save(ctx, types.RoleSent, validSent())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, types.RoleSent, saved.ID))
	list, err := svc.List(ctx, types.RoleSent)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportRejectsNonArrayBeforeStorage(t *testing.T) {
	svc, mem := newTestService(t)
	_, err := svc.Import(context.Background(), types.RoleSent, []byte(`{"callSign":"JA1ABC"}`))
	assert.True(t, errors.Is(err, types.ErrNotSequence))
	gets, puts := mem.Calls()
	assert.Zero(t, gets)
	assert.Zero(t, puts)
}

func TestImportValidatesEveryCard(t *testing.T) {
	svc, mem := newTestService(t)
	bad := validSent()
	bad.Mode = ""
	raw, err := json.Marshal([]types.Card{validSent(), bad})
	require.NoError(t, err)

	_, err = svc.Import(context.Background(), types.RoleSent, raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card 1: mode is required")
	_, puts := mem.Calls()
	assert.Zero(t, puts)
}

func TestImportAssignsIDsAndRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := validSent()
	b := validSent()
	raw, err := json.Marshal([]types.Card{a, b})
	require.NoError(t, err)
	out, err := svc.Import(ctx, types.RoleSent, raw)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0].ID, out[1].ID)
	assert.False(t, out[0].CreatedAt.IsZero())

	a.ID, b.ID = "same", "same"
	raw, err = json.Marshal([]types.Card{a, b})
	require.NoError(t, err)
	_, err = svc.Import(ctx, types.RoleSent, raw)
	assert.ErrorContains(t, err, "duplicate id same")
}

func TestStatsAndChartReadBothCollections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	s1 := validSent()
	s1.Date = "2024-01-15"
	s2 := validSent()
	s2.Date = "2024-02-01"
	s2.Status = types.StatusSent
	r1 := validSent()
	r1.CallSign = "W1XYZ"
	r1.Date = "2024-02-10"
	r1.Mode = "EYE"
	r1.Status = types.StatusReceived

	for _, c := range []types.Card{s1, s2} {
		_, err := svc.Save(ctx, types.RoleSent, c)
		require.NoError(t, err)
	}
	_, err := svc.Save(ctx, types.RoleReceived, r1)
	require.NoError(t, err)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Sent)
	assert.Equal(t, 1, st.Received)
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, 2, st.Countries)
	assert.Equal(t, 1, st.EyeQSO)

	ch, err := svc.Chart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ch.Count(ch.Sent, "2024-01"))
	assert.Equal(t, 1, ch.Count(ch.Sent, "2024-02"))
	assert.Equal(t, 1, ch.Count(ch.Received, "2024-02"))
	assert.Equal(t, 0, ch.Count(ch.Received, "2024-01"))
}

func TestStoreFailureIsSurfaced(t *testing.T) {
	svc, mem := newTestService(t)
	mem.GetErr = objstore.AsAccessError("memory", objstore.OpRead, testKeys.Sent, objstore.AccessErrorPermission, errors.New("denied"))

	_, err := svc.Stats(context.Background())
	var ae *objstore.AccessError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, objstore.AccessErrorPermission, ae.Kind)
}

func TestPing(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, "pong", svc.Ping(context.Background()).Message)
}
