package api

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"moneybook/database"
	"moneybook/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB 每个测试一个独立的临时 SQLite 库，建表后直接可用
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// setupMockDB 基于 sqlmock 的句柄，用于模拟底层 SQL 失败
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	// gorm 的 sqlite 驱动在 Open 时会查询版本号，先喂给 sqlmock
	mock.ExpectQuery(`select sqlite_version\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.45.1"))

	gormDB, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = new(bytes.Buffer)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", value, time.Local)
	require.NoError(t, err)
	return d
}

func seedIncomeCategory(t *testing.T, db *gorm.DB, name string) models.IncomeCategory {
	t.Helper()
	cat := models.IncomeCategory{Name: name}
	require.NoError(t, db.Create(&cat).Error)
	return cat
}

func seedExpenseCategory(t *testing.T, db *gorm.DB, name string, groupID *uint) models.ExpenseCategory {
	t.Helper()
	cat := models.ExpenseCategory{Name: name, GroupID: groupID}
	require.NoError(t, db.Create(&cat).Error)
	return cat
}

func seedExpenseGroup(t *testing.T, db *gorm.DB, name string) models.ExpenseGroup {
	t.Helper()
	group := models.ExpenseGroup{Name: name}
	require.NoError(t, db.Create(&group).Error)
	return group
}

func seedTransaction(t *testing.T, db *gorm.DB, txType string, amount float64, categoryID uint, date string) models.Transaction {
	t.Helper()
	tx := models.Transaction{
		Type:       txType,
		Amount:     amount,
		Currency:   "USD",
		CategoryID: categoryID,
		Date:       mustDate(t, date),
		UserID:     models.DefaultUserID,
	}
	require.NoError(t, db.Create(&tx).Error)
	return tx
}
