package dao

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/gameerr"
	"github.com/lk2023060901/pigfarm/app/pigbot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStorageContract 所有 Storage 实现共享的行为测试，chatID 需在库中未被使用
func runStorageContract(t *testing.T, s Storage, chatID int64) {
	ctx := context.Background()

	create := func(t *testing.T, userID int64, name string, weight int32) *model.Creature {
		t.Helper()
		c, err := s.CreateCreature(ctx, &model.Creature{ChatID: chatID, UserID: userID, Name: name, Weight: weight, OwnerName: "tester"})
		require.NoError(t, err)
		require.NotZero(t, c.ID)
		return c
	}

	t.Run("get absent", func(t *testing.T) {
		c, err := s.GetCreature(ctx, chatID, 1)
		require.NoError(t, err)
		assert.Nil(t, c)

		rank, ok, err := s.RankOf(ctx, chatID, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, rank)
	})

	a := create(t, 1, "Хрюндель", 50)
	b := create(t, 2, "Бекон_100%", 70)
	c := create(t, 3, "хрюша", 50)

	t.Run("duplicate create", func(t *testing.T) {
		_, err := s.CreateCreature(ctx, &model.Creature{ChatID: chatID, UserID: 1, Name: "dup", Weight: 10})
		assert.Equal(t, gameerr.KindStorage, gameerr.KindOf(err))
		assert.True(t, errors.Is(err, ErrCreatureExists))
	})

	t.Run("ranked order", func(t *testing.T) {
		list, err := s.ListCreaturesRanked(ctx, chatID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []int64{2, 1, 3}, []int64{list[0].UserID, list[1].UserID, list[2].UserID})

		n, err := s.CountCreatures(ctx, chatID)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		for want, userID := range []int64{2, 1, 3} {
			rank, ok, err := s.RankOf(ctx, chatID, userID)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, want+1, rank, "user %d", userID)
		}
	})

	t.Run("find by name", func(t *testing.T) {
		list, err := s.FindCreaturesByName(ctx, chatID, "ХРЮ")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, a.ID, list[0].ID)
		assert.Equal(t, c.ID, list[1].ID)

		list, err = s.FindCreaturesByName(ctx, chatID, "_100%")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, b.ID, list[0].ID)

		list, err = s.FindCreaturesByName(ctx, chatID, "%")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("conditional update", func(t *testing.T) {
		next := a.Clone()
		next.LastWeight = next.Weight
		next.Weight = 80
		next.LastFeed = float64(time.Now().Unix())

		updated, ok, err := s.UpdateCreatureIfWeight(ctx, next, 49)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, updated)

		updated, ok, err = s.UpdateCreatureIfWeight(ctx, next, 50)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int32(80), updated.Weight)
		assert.Equal(t, int32(50), updated.LastWeight)
		assert.Equal(t, a.ID, updated.ID)

		rank, _, err := s.RankOf(ctx, chatID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, rank)
	})

	t.Run("update and rename", func(t *testing.T) {
		next := c.Clone()
		next.Weight = 1
		updated, err := s.UpdateCreature(ctx, next)
		require.NoError(t, err)
		assert.Equal(t, int32(1), updated.Weight)

		require.NoError(t, s.RenameCreature(ctx, chatID, 3, "Окорок"))
		got, err := s.GetCreature(ctx, chatID, 3)
		require.NoError(t, err)
		assert.Equal(t, "Окорок", got.Name)
		assert.Equal(t, int32(1), got.Weight)
	})

	t.Run("missing row", func(t *testing.T) {
		_, err := s.UpdateCreature(ctx, &model.Creature{ChatID: chatID, UserID: 404, Name: "x", Weight: 1})
		assert.True(t, errors.Is(err, ErrCreatureNotFound))
		assert.Equal(t, gameerr.KindStorage, gameerr.KindOf(err))

		err = s.RenameCreature(ctx, chatID, 404, "x")
		assert.True(t, errors.Is(err, ErrCreatureNotFound))
	})

	t.Run("items", func(t *testing.T) {
		desc := "пахнет"
		first, err := s.AddItem(ctx, &model.Item{ChatID: chatID, Owner: 1, Name: "Желудь", Icon: "🌰", Description: &desc})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, first.UUID)
		assert.NotZero(t, first.ID)

		fixed := uuid.New()
		_, err = s.AddItem(ctx, &model.Item{ChatID: chatID, Owner: 1, Name: "Трюфель", UUID: fixed})
		require.NoError(t, err)
		_, err = s.AddItem(ctx, &model.Item{ChatID: chatID, Owner: 2, Name: "Морковь"})
		require.NoError(t, err)

		items, err := s.ListItems(ctx, chatID, 1)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Желудь", items[0].Name)
		assert.Equal(t, fixed, items[1].UUID)
		require.NotNil(t, items[0].Description)
		assert.Equal(t, desc, *items[0].Description)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runStorageContract(t, NewMemoryStore(), 100)
}

func TestStoreOverMemory(t *testing.T) {
	runStorageContract(t, NewMemoryBackedStore(NewMemoryStore(), nil), 100)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.CreateCreature(ctx, &model.Creature{ChatID: 1, UserID: 1, Name: "a", Weight: 10})
	require.NoError(t, err)
	created.Weight = 999

	got, err := s.GetCreature(ctx, 1, 1)
	require.NoError(t, err)
	if got.Weight != 10 {
		t.Errorf("GetCreature().Weight = %d, want 10", got.Weight)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := EscapeLike(tt.in); got != tt.want {
			t.Errorf("EscapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatements(t *testing.T) {
	stmts := Statements()
	if len(stmts) != 4 {
		t.Fatalf("Statements() len = %d, want 4", len(stmts))
	}
	for _, s := range stmts {
		assert.Contains(t, s, "IF NOT EXISTS")
	}
}
