package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firmdirectory/internal/db"
	"github.com/firmdirectory/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open("sqlite", dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestDefaultFixtureParses(t *testing.T) {
	fx, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, fx.States)
	assert.NotEmpty(t, fx.PracticeAreas)
	assert.NotEmpty(t, fx.Firms)
	assert.Equal(t, "CA", fx.States[0].Code)
}

func TestApplyDefaultIsIdempotent(t *testing.T) {
	gdb := setupSeedDB(t)
	fx, err := Default()
	require.NoError(t, err)

	first, err := Apply(gdb, fx)
	require.NoError(t, err)
	assert.Equal(t, len(fx.States), first.States)
	assert.Equal(t, len(fx.PracticeAreas), first.PracticeAreas)
	assert.Equal(t, len(fx.Firms), first.Firms)
	assert.Equal(t, len(fx.Pages), first.Pages)
	assert.Positive(t, first.Lawyers)

	second, err := Apply(gdb, fx)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, second)

	var firms int64
	require.NoError(t, gdb.Model(&db.Firm{}).Count(&firms).Error)
	assert.EqualValues(t, len(fx.Firms), firms)
}

func TestApplyLinksOfficesToMetros(t *testing.T) {
	gdb := setupSeedDB(t)
	fx, err := Default()
	require.NoError(t, err)
	_, err = Apply(gdb, fx)
	require.NoError(t, err)

	firm, err := service.NewFirmService(gdb, nil).GetBySlug("harbor-vale-llp", true)
	require.NoError(t, err)
	require.Len(t, firm.Offices, 2)

	hq := firm.Headquarters()
	require.NotNil(t, hq)
	require.NotNil(t, hq.Metro)
	assert.Equal(t, "los-angeles-ca", hq.Metro.Slug)
	assert.Len(t, firm.Lawyers, 2)
	assert.Len(t, firm.PracticeAreas, 2)
}

func TestApplyRejectsUnknownPracticeArea(t *testing.T) {
	gdb := setupSeedDB(t)
	fx := &Fixture{
		States: []StateFixture{{Name: "Oregon", Code: "OR"}},
		Firms:  []FirmFixture{{Name: "Cascade Law", PracticeAreas: []string{"maritime"}}},
	}

	_, err := Apply(gdb, fx)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrPracticeAreaNotFound)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("states:\n  - name: Ohio\n    code: OH\n    metros: [Columbus]\n"), 0o644))

	fx, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, fx.States, 1)
	assert.Equal(t, []string{"Columbus"}, fx.States[0].Metros)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("states: [\n"), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "parse seed file")
}
