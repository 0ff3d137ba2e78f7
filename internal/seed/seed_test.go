package seed

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	sellerdomain "github.com/smallbiznis/quoteflow/internal/seller/domain"
	styledomain "github.com/smallbiznis/quoteflow/internal/style/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&sellerdomain.Seller{}, &styledomain.Style{}))
	return db
}

func TestEnsureReferenceData_SeedsOnceAndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	require.NoError(t, EnsureReferenceData(db, node))
	require.NoError(t, EnsureReferenceData(db, node))

	var sellers []sellerdomain.Seller
	require.NoError(t, db.Order("is_main desc, name asc").Find(&sellers).Error)
	require.Len(t, sellers, 3)
	assert.Equal(t, "MainCo Pvt Ltd", sellers[0].Name)
	assert.True(t, sellers[0].IsMain)
	assert.Equal(t, "27ABCDE1234F1Z5", sellers[0].GSTIN)

	var styles []styledomain.Style
	require.NoError(t, db.Find(&styles).Error)
	assert.Len(t, styles, 5)

	var defaults int64
	require.NoError(t, db.Model(&styledomain.Style{}).Where("is_default = ?", true).Count(&defaults).Error)
	assert.Equal(t, int64(1), defaults)
}

func TestEnsureReferenceData_KeepsExistingRows(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Create(&sellerdomain.Seller{ID: 1, Name: "Own Seller"}).Error)
	require.NoError(t, db.Create(&styledomain.Style{ID: 2, Code: styledomain.CodeBoxed, Title: "Boxed", IsDefault: true}).Error)

	require.NoError(t, EnsureReferenceData(db, nil))

	var sellers int64
	require.NoError(t, db.Model(&sellerdomain.Seller{}).Count(&sellers).Error)
	assert.Equal(t, int64(1), sellers)

	var main styledomain.Style
	require.NoError(t, db.Where("code = ?", styledomain.CodeMain).First(&main).Error)
	assert.False(t, main.IsDefault)
}
