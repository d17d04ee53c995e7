package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"moneybook/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newIncomeCategoryRouter(db *gorm.DB) *gin.Engine {
	h := NewIncomeCategoryHandler(db)
	router := gin.New()
	router.GET("/income-categories", h.List)
	router.POST("/income-categories", h.Create)
	router.PUT("/income-categories/:id", h.Update)
	router.DELETE("/income-categories/:id", h.Delete)
	return router
}

func TestIncomeCategoryHandler_Create(t *testing.T) {
	db := setupTestDB(t)
	router := newIncomeCategoryRouter(db)

	w := performRequest(router, "POST", "/income-categories", `{"name":"  工资  ","description":"主业收入"}`)
	assert.Equal(t, 200, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp["id"])

	// 名称写入前去除首尾空白
	var saved models.IncomeCategory
	require.NoError(t, db.First(&saved, uint(resp["id"].(float64))).Error)
	assert.Equal(t, "工资", saved.Name)
}

func TestIncomeCategoryHandler_Create_DuplicateName(t *testing.T) {
	db := setupTestDB(t)
	seedIncomeCategory(t, db, "工资")
	router := newIncomeCategoryRouter(db)

	w := performRequest(router, "POST", "/income-categories", `{"name":"工资"}`)
	assert.Equal(t, 409, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "类别名称已存在", resp.Error)
}

func TestIncomeCategoryHandler_Create_EmptyName(t *testing.T) {
	db := setupTestDB(t)
	router := newIncomeCategoryRouter(db)

	w := performRequest(router, "POST", "/income-categories", `{"name":"   "}`)
	assert.Equal(t, 400, w.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "name", resp.Errors[0].Field)
}

func TestIncomeCategoryHandler_Create_DescriptionTooLong(t *testing.T) {
	db := setupTestDB(t)
	router := newIncomeCategoryRouter(db)

	// 超长描述的错误要落在 description 字段上
	body := fmt.Sprintf(`{"name":"理财","description":"%s"}`, strings.Repeat("长", 256))
	w := performRequest(router, "POST", "/income-categories", body)
	assert.Equal(t, 400, w.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "description", resp.Errors[0].Field)
}

func TestIncomeCategoryHandler_Create_StorageError(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 查重语句失败必须报 500，而不是当作无重复继续写入
	mock.ExpectQuery("SELECT \\* FROM `income_categories`").
		WillReturnError(errors.New("disk I/O error"))

	router := newIncomeCategoryRouter(db)
	w := performRequest(router, "POST", "/income-categories", `{"name":"工资"}`)
	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeCategoryHandler_Update(t *testing.T) {
	db := setupTestDB(t)
	cat := seedIncomeCategory(t, db, "工资")
	seedIncomeCategory(t, db, "奖金")
	router := newIncomeCategoryRouter(db)

	// 改成已存在的其它名称被拒绝
	w := performRequest(router, "PUT", fmt.Sprintf("/income-categories/%d", cat.ID), `{"name":"奖金"}`)
	assert.Equal(t, 409, w.Code)

	// 保持自身名称不算冲突
	w = performRequest(router, "PUT", fmt.Sprintf("/income-categories/%d", cat.ID), `{"name":"工资","description":"更新描述"}`)
	assert.Equal(t, 200, w.Code)
	var updated models.IncomeCategory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "更新描述", updated.Description)

	// 不存在的ID
	w = performRequest(router, "PUT", "/income-categories/9999", `{"name":"理财"}`)
	assert.Equal(t, 404, w.Code)
}

func TestIncomeCategoryHandler_Delete(t *testing.T) {
	db := setupTestDB(t)
	cat := seedIncomeCategory(t, db, "工资")
	router := newIncomeCategoryRouter(db)

	w := performRequest(router, "DELETE", fmt.Sprintf("/income-categories/%d", cat.ID), "")
	assert.Equal(t, 200, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(cat.ID), resp["deletedId"])

	w = performRequest(router, "DELETE", fmt.Sprintf("/income-categories/%d", cat.ID), "")
	assert.Equal(t, 404, w.Code)
}

func TestIncomeCategoryHandler_Delete_Referenced(t *testing.T) {
	db := setupTestDB(t)
	cat := seedIncomeCategory(t, db, "工资")
	seedTransaction(t, db, models.TypeIncome, 5000, cat.ID, "2024-01-01")
	router := newIncomeCategoryRouter(db)

	w := performRequest(router, "DELETE", fmt.Sprintf("/income-categories/%d", cat.ID), "")
	assert.Equal(t, 409, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "无法删除：存在关联的交易记录", resp.Error)
	assert.Equal(t, "请先删除或改派相关交易", resp.Solution)

	// 类别仍然存在
	var count int64
	db.Model(&models.IncomeCategory{}).Where("id = ?", cat.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
