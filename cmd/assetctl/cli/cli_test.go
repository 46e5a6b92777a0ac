package cli

import (
	"Go_Site/config"
	"Go_Site/internal/repo"
	"Go_Site/internal/service"
	"Go_Site/internal/storage"
	"Go_Site/model"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var testStore *storage.MemoryStore

func newService(t *testing.T, quota int64) (*service.AssetService, *gorm.DB) {
	t.Helper()
	db, err := repo.OpenMemorySQLite(strings.ReplaceAll(uuid.NewString(), "-", ""))
	require.NoError(t, err)
	testStore = storage.NewMemoryStore()
	media := config.DefaultMediaConfig()
	media.QuotaBytes = quota
	media.LocalRetryDelays = nil
	svc, err := service.NewAssetService(service.Options{
		DB:      db,
		Store:   testStore,
		Locator: storage.Locator{Bucket: "site-media", Prefix: "media", BaseURL: "https://cdn.example.com/site-media"},
		Media:   media,
	})
	require.NoError(t, err)
	return svc, db
}

func seed(t *testing.T, svc *service.AssetService, id, name string, size int64) {
	t.Helper()
	require.NoError(t, testStore.PutObject(context.Background(), "site-media", "media/"+name,
		strings.NewReader("img"), 3, storage.PutOptions{ContentType: "image/jpeg"}))
	require.NoError(t, svc.Registry().Create(context.Background(), &model.Asset{
		ID: id, Name: name, Width: 800, Height: 600, Bytes: size, Format: "jpg",
	}))
}

func run(t *testing.T, svc *service.AssetService, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(VersionInfo{Version: "test", Commit: "abc"}, func() (*service.AssetService, error) {
		return svc, nil
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestListCommand(t *testing.T) {
	svc, _ := newService(t, 0)
	seed(t, svc, "a1", "beach.jpg", 2048)

	out, _, err := run(t, svc, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "beach.jpg")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "800x600")

	out, _, err = run(t, svc, "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "beach.jpg"`)
}

func TestUsageCommand(t *testing.T) {
	svc, db := newService(t, 0)
	seed(t, svc, "a1", "face.jpg", 10)
	id := "a1"
	require.NoError(t, db.Omit(clause.Associations).Create(&model.Testimonial{Name: "Ana", AvatarID: &id}).Error)

	out, _, err := run(t, svc, "usage", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, `"testimonialAvatars"`)
	assert.Contains(t, out, "Ana")

	_, _, err = run(t, svc, "usage", "missing")
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestRenameCommand(t *testing.T) {
	svc, _ := newService(t, 0)
	seed(t, svc, "a1", "old.jpg", 10)

	out, _, err := run(t, svc, "rename", "a1", "new.jpg")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "new.jpg"`)
	assert.True(t, testStore.Has("site-media", "media/new.jpg"))
	assert.False(t, testStore.Has("site-media", "media/old.jpg"))

	_, _, err = run(t, svc, "rename", "a1")
	assert.Error(t, err)
}

func TestDeleteCommand(t *testing.T) {
	svc, db := newService(t, 0)
	seed(t, svc, "used", "used.jpg", 10)
	seed(t, svc, "free", "free.jpg", 10)
	id := "used"
	require.NoError(t, db.Omit(clause.Associations).Create(&model.Testimonial{Name: "Ana", AvatarID: &id}).Error)

	_, errOut, err := run(t, svc, "delete", "used")
	var conflict *service.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, errOut, "testimonialAvatars")

	out, _, err := run(t, svc, "delete", "free")
	require.NoError(t, err)
	assert.Equal(t, "deleted free\n", out)
	_, err = svc.GetAsset(context.Background(), "free")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestQuotaCommand(t *testing.T) {
	svc, _ := newService(t, 4096)
	seed(t, svc, "a1", "a.jpg", 1024)

	out, _, err := run(t, svc, "quota")
	require.NoError(t, err)
	assert.Equal(t, "used 1.0 KiB of 4.0 KiB (25.00%)\n", out)

	seed(t, svc, "a2", "b.jpg", 3072)
	out, _, err = run(t, svc, "quota")
	require.NoError(t, err)
	assert.Contains(t, out, "quota exceeded")
}

func TestQuotaCommandUnlimited(t *testing.T) {
	svc, _ := newService(t, 0)
	out, _, err := run(t, svc, "quota")
	require.NoError(t, err)
	assert.Contains(t, out, "of unlimited")
}

func TestFactoryErrorStopsCommand(t *testing.T) {
	cmd := NewRootCommand(VersionInfo{}, func() (*service.AssetService, error) {
		return nil, errors.New("no database")
	})
	cmd.SetArgs([]string{"list"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "no database")
}
