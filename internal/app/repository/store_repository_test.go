package repository

import (
	"context"
	"testing"

	"github.com/ikkim/restaurant-ops-backend/internal/app/model"
	"github.com/ikkim/restaurant-ops-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStoreRepositoryTest(t *testing.T) (StoreRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	return NewStoreRepository(testDB), testDB
}

func newTestStore(ownerID uint, name, key string) *model.Store {
	store := &model.Store{
		OwnerID:     ownerID,
		Name:        name,
		PhoneNumber: "03-1234-5678",
		Address:     "Shibuya, Tokyo",
		PlanTier:    "standard",
		LineChannel: &model.LineChannel{
			ChannelID:  "1650000000",
			WebhookURL: "https://hooks.example.com/line/x",
		},
		CalendarSetting: &model.CalendarSetting{CalendarID: "primary", Timezone: "Asia/Tokyo"},
		AIAssistant:     &model.AIAssistant{},
	}
	if key != "" {
		store.IdempotencyKey = &key
	}
	return store
}

func TestStoreRepository_CreateAndFind(t *testing.T) {
	repo, _ := setupStoreRepositoryTest(t)

	store := newTestStore(1, "Izakaya Taro", "key-1")
	require.NoError(t, repo.Create(store))
	assert.NotEmpty(t, store.PublicID)
	assert.Equal(t, "izakaya-taro", store.Slug)

	found, err := repo.FindByPublicID(store.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "Izakaya Taro", found.Name)
	require.NotNil(t, found.LineChannel)
	assert.Equal(t, "1650000000", found.LineChannel.ChannelID)
	require.NotNil(t, found.CalendarSetting)
	assert.Equal(t, "Asia/Tokyo", found.CalendarSetting.Timezone)

	_, err = repo.FindByPublicID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStoreRepository_FindByIdempotencyKey(t *testing.T) {
	repo, _ := setupStoreRepositoryTest(t)

	store := newTestStore(1, "Izakaya Taro", "key-1")
	require.NoError(t, repo.Create(store))

	found, err := repo.FindByIdempotencyKey(1, "key-1")
	require.NoError(t, err)
	assert.Equal(t, store.PublicID, found.PublicID)

	// keys are scoped to their owner
	_, err = repo.FindByIdempotencyKey(2, "key-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.Error(t, repo.Create(newTestStore(1, "Another", "key-1")))
}

func TestStoreRepository_ExistsByOwnerAndName(t *testing.T) {
	repo, _ := setupStoreRepositoryTest(t)
	require.NoError(t, repo.Create(newTestStore(1, "Izakaya Taro", "")))

	tests := []struct {
		name    string
		ownerID uint
		query   string
		want    bool
	}{
		{"exact", 1, "Izakaya Taro", true},
		{"case and spaces", 1, "  izakaya taro ", true},
		{"other owner", 2, "Izakaya Taro", false},
		{"other name", 1, "Sushi Hana", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := repo.ExistsByOwnerAndName(tt.ownerID, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestStoreRepository_FindByOwner(t *testing.T) {
	repo, testDB := setupStoreRepositoryTest(t)

	require.NoError(t, repo.Create(newTestStore(1, "Izakaya Taro", "")))
	require.NoError(t, repo.Create(newTestStore(1, "Sushi Hana", "")))
	require.NoError(t, repo.Create(newTestStore(2, "Ramen Ken", "")))

	stores, err := repo.FindByOwner(1)
	require.NoError(t, err)
	assert.Len(t, stores, 2)

	require.NoError(t, db.TruncateAllTables(testDB))
	stores, err = repo.FindByOwner(1)
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestStoreRepository_WithTx(t *testing.T) {
	repo, testDB := setupStoreRepositoryTest(t)

	tx := testDB.Begin()
	require.NoError(t, repo.WithTx(tx).Create(newTestStore(1, "Izakaya Taro", "")))
	require.NoError(t, tx.Rollback().Error)

	stores, err := repo.FindByOwner(1)
	require.NoError(t, err)
	assert.Empty(t, stores)
}

func TestStoreRepository_WithContext(t *testing.T) {
	repo, _ := setupStoreRepositoryTest(t)
	require.NoError(t, repo.Create(newTestStore(1, "Izakaya Taro", "key-1")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bound := repo.WithContext(ctx)

	assert.ErrorIs(t, bound.Create(newTestStore(1, "Sushi Hana", "")), context.Canceled)
	_, err := bound.FindByIdempotencyKey(1, "key-1")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = bound.ExistsByOwnerAndName(1, "Izakaya Taro")
	assert.ErrorIs(t, err, context.Canceled)

	stores, err := repo.FindByOwner(1)
	require.NoError(t, err)
	assert.Len(t, stores, 1)
}
