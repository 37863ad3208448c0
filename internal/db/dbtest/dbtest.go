// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/db"
)

var seq atomic.Int64

// Open returns a fresh shared-cache sqlite database. Each call gets its own
// database so parallel tests never see each other's rows.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:shoptest%d?mode=memory&cache=shared", seq.Add(1))
	gdb, err := db.Open(t.Context(), db.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() { db.Close(gdb) })
	return gdb
}
