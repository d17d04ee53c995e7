package api

import (
	"encoding/json"
	"testing"

	"moneybook/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStatsRouter(db *gorm.DB) *gin.Engine {
	h := NewStatsHandler(db)
	router := gin.New()
	router.GET("/stats/summary", h.Summary)
	router.GET("/stats/categories", h.Categories)
	return router
}

func TestStatsHandler_Summary(t *testing.T) {
	db := setupTestDB(t)
	salary := seedIncomeCategory(t, db, "工资")
	food := seedExpenseCategory(t, db, "餐饮", nil)
	seedTransaction(t, db, models.TypeIncome, 5000, salary.ID, "2024-01-01")
	seedTransaction(t, db, models.TypeExpense, 100, food.ID, "2024-01-10")
	seedTransaction(t, db, models.TypeExpense, 23.45, food.ID, "2024-02-01")

	router := newStatsRouter(db)
	w := performRequest(router, "GET", "/stats/summary", "")
	assert.Equal(t, 200, w.Code)

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(5000), resp.TotalIncome)
	assert.InDelta(t, 123.45, resp.TotalExpense, 0.001)
	assert.InDelta(t, 4876.55, resp.Balance, 0.001)

	// 日期范围截断到一月，结束日期当天包含在内
	w = performRequest(router, "GET", "/stats/summary?start_date=2024-01-01&end_date=2024-01-10", "")
	assert.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(5000), resp.TotalIncome)
	assert.Equal(t, float64(100), resp.TotalExpense)
	assert.Equal(t, float64(4900), resp.Balance)
}

func TestStatsHandler_Summary_Empty(t *testing.T) {
	db := setupTestDB(t)
	router := newStatsRouter(db)

	// 无匹配交易时返回全零而不是错误
	w := performRequest(router, "GET", "/stats/summary?start_date=2030-01-01", "")
	assert.Equal(t, 200, w.Code)

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.TotalIncome)
	assert.Zero(t, resp.TotalExpense)
	assert.Zero(t, resp.Balance)
}

func TestStatsHandler_Summary_InvalidDate(t *testing.T) {
	db := setupTestDB(t)
	router := newStatsRouter(db)

	w := performRequest(router, "GET", "/stats/summary?start_date=01-01-2024", "")
	assert.Equal(t, 400, w.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "start_date", resp.Errors[0].Field)
}

func TestStatsHandler_Categories(t *testing.T) {
	db := setupTestDB(t)
	food := seedExpenseCategory(t, db, "餐饮", nil)
	transport := seedExpenseCategory(t, db, "交通", nil)
	seedExpenseCategory(t, db, "娱乐", nil) // 无交易，不应出现在结果里
	seedTransaction(t, db, models.TypeExpense, 100, food.ID, "2024-01-01")
	seedTransaction(t, db, models.TypeExpense, 50, food.ID, "2024-01-05")
	seedTransaction(t, db, models.TypeExpense, 200, transport.ID, "2024-01-10")

	router := newStatsRouter(db)
	w := performRequest(router, "GET", "/stats/categories?type=expense", "")
	assert.Equal(t, 200, w.Code)

	var stats []CategoryStat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 2)

	// 按总金额降序
	assert.Equal(t, "交通", stats[0].Category)
	assert.Equal(t, float64(200), stats[0].Total)
	assert.Equal(t, int64(1), stats[0].Transactions)
	assert.Equal(t, "餐饮", stats[1].Category)
	assert.Equal(t, float64(150), stats[1].Total)
	assert.Equal(t, int64(2), stats[1].Transactions)
}

func TestStatsHandler_Categories_TypeRequired(t *testing.T) {
	db := setupTestDB(t)
	router := newStatsRouter(db)

	w := performRequest(router, "GET", "/stats/categories", "")
	assert.Equal(t, 400, w.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "type", resp.Errors[0].Field)
}

func TestStatsHandler_Categories_EmptyResult(t *testing.T) {
	db := setupTestDB(t)
	router := newStatsRouter(db)

	// 没有任何交易时返回空数组
	w := performRequest(router, "GET", "/stats/categories?type=income", "")
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
