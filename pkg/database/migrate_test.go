package database

import (
	"effisense-go/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesSchemaWithForeignKeys(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "homes", "appliances", "usages", "chat_message_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&model.Appliance{}, "HomeID"))
	assert.True(t, db.Migrator().HasIndex(&model.Usage{}, "ApplianceID"))

	// An appliance pointing at a missing home is rejected.
	err = db.Create(&model.Appliance{HomeID: 999, Name: "Orphan"}).Error
	assert.Error(t, err)
}
