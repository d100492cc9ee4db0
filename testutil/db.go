package testutil

import (
	"fmt"
	"strings"
	"testing"

	"archive-browser/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory SQLite database private to the test and
// migrates the schema. It is closed when the test ends.
func SetupTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to connect to in-memory test database")
	require.NoError(t, database.Migrate(db), "Failed to auto-migrate test database schema")

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
