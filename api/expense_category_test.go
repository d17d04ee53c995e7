package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"moneybook/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newExpenseCategoryRouter(db *gorm.DB) *gin.Engine {
	h := NewExpenseCategoryHandler(db)
	router := gin.New()
	router.GET("/expense-categories", h.List)
	router.POST("/expense-categories", h.Create)
	router.PUT("/expense-categories/:id", h.Update)
	router.DELETE("/expense-categories/:id", h.Delete)
	return router
}

func TestExpenseCategoryHandler_Create_SameNameDifferentGroups(t *testing.T) {
	db := setupTestDB(t)
	g1 := seedExpenseGroup(t, db, "家庭")
	g2 := seedExpenseGroup(t, db, "工作")
	router := newExpenseCategoryRouter(db)

	// 同名类别可以出现在两个不同分组下
	w := performRequest(router, "POST", "/expense-categories", fmt.Sprintf(`{"name":"餐饮","group_id":%d}`, g1.ID))
	assert.Equal(t, 201, w.Code)
	w = performRequest(router, "POST", "/expense-categories", fmt.Sprintf(`{"name":"餐饮","group_id":%d}`, g2.ID))
	assert.Equal(t, 201, w.Code)

	// 同一分组下重名被拒绝
	w = performRequest(router, "POST", "/expense-categories", fmt.Sprintf(`{"name":"餐饮","group_id":%d}`, g1.ID))
	assert.Equal(t, 409, w.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "该分组下类别已存在", errResp.Error)
}

func TestExpenseCategoryHandler_Create_UngroupedUniqueness(t *testing.T) {
	db := setupTestDB(t)
	router := newExpenseCategoryRouter(db)

	// 未分组（NULL）之间同样查重
	w := performRequest(router, "POST", "/expense-categories", `{"name":"杂项"}`)
	assert.Equal(t, 201, w.Code)
	w = performRequest(router, "POST", "/expense-categories", `{"name":"杂项"}`)
	assert.Equal(t, 409, w.Code)
}

func TestExpenseCategoryHandler_Create_MissingName(t *testing.T) {
	db := setupTestDB(t)
	router := newExpenseCategoryRouter(db)

	w := performRequest(router, "POST", "/expense-categories", `{}`)
	assert.Equal(t, 400, w.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "name", resp.Errors[0].Field)
	assert.Equal(t, "不能为空", resp.Errors[0].Message)
}

func TestExpenseCategoryHandler_Create_StorageError(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 未分组路径的查重语句失败必须报 500
	mock.ExpectQuery("SELECT \\* FROM `expense_categories`").
		WillReturnError(errors.New("disk I/O error"))

	router := newExpenseCategoryRouter(db)
	w := performRequest(router, "POST", "/expense-categories", `{"name":"餐饮"}`)
	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseCategoryHandler_Create_UnknownGroup(t *testing.T) {
	db := setupTestDB(t)
	router := newExpenseCategoryRouter(db)

	w := performRequest(router, "POST", "/expense-categories", `{"name":"餐饮","group_id":9999}`)
	assert.Equal(t, 400, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "指定的分组不存在", resp.Error)
}

func TestExpenseCategoryHandler_Update_MoveBetweenGroups(t *testing.T) {
	db := setupTestDB(t)
	g1 := seedExpenseGroup(t, db, "家庭")
	g2 := seedExpenseGroup(t, db, "工作")
	cat := seedExpenseCategory(t, db, "餐饮", &g1.ID)
	seedExpenseCategory(t, db, "交通", &g2.ID)
	router := newExpenseCategoryRouter(db)

	// 移动到另一个分组
	w := performRequest(router, "PUT", fmt.Sprintf("/expense-categories/%d", cat.ID), fmt.Sprintf(`{"name":"餐饮","group_id":%d}`, g2.ID))
	assert.Equal(t, 200, w.Code)
	var updated models.ExpenseCategory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.GroupID)
	assert.Equal(t, g2.ID, *updated.GroupID)

	// 改名撞上目标分组里的已有类别
	w = performRequest(router, "PUT", fmt.Sprintf("/expense-categories/%d", cat.ID), fmt.Sprintf(`{"name":"交通","group_id":%d}`, g2.ID))
	assert.Equal(t, 409, w.Code)

	// 省略 group_id 表示脱离分组
	w = performRequest(router, "PUT", fmt.Sprintf("/expense-categories/%d", cat.ID), `{"name":"餐饮"}`)
	assert.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Nil(t, updated.GroupID)
}

func TestExpenseCategoryHandler_Delete_Referenced(t *testing.T) {
	db := setupTestDB(t)
	cat := seedExpenseCategory(t, db, "餐饮", nil)
	seedTransaction(t, db, models.TypeExpense, 35.5, cat.ID, "2024-01-10")
	router := newExpenseCategoryRouter(db)

	w := performRequest(router, "DELETE", fmt.Sprintf("/expense-categories/%d", cat.ID), "")
	assert.Equal(t, 409, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "无法删除：存在关联的交易记录", resp.Error)
	assert.NotEmpty(t, resp.Solution)
}

func TestExpenseCategoryHandler_List(t *testing.T) {
	db := setupTestDB(t)
	seedExpenseCategory(t, db, "餐饮", nil)
	seedExpenseCategory(t, db, "交通", nil)
	router := newExpenseCategoryRouter(db)

	w := performRequest(router, "GET", "/expense-categories", "")
	assert.Equal(t, 200, w.Code)

	var list []models.ExpenseCategory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	// 按 id 升序
	assert.Equal(t, "餐饮", list[0].Name)
	assert.Equal(t, "交通", list[1].Name)
}
