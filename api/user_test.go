package api

import (
	"encoding/json"
	"fmt"
	"testing"

	"moneybook/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserRouter(db *gorm.DB) *gin.Engine {
	h := NewUserHandler(db)
	router := gin.New()
	router.GET("/users", h.List)
	router.POST("/users", h.Create)
	router.PUT("/users/:id", h.Update)
	router.DELETE("/users/:id", h.Delete)
	return router
}

func TestUserHandler_Create(t *testing.T) {
	db := setupTestDB(t)
	router := newUserRouter(db)

	// 未指定货币时默认 USD
	w := performRequest(router, "POST", "/users", `{"name":"小明"}`)
	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var user models.User
	require.NoError(t, db.First(&user, uint(resp["id"].(float64))).Error)
	assert.Equal(t, "USD", user.DefaultCurrency)

	// 指定货币统一转为大写
	w = performRequest(router, "POST", "/users", `{"name":"小红","default_currency":"cny"}`)
	assert.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	user = models.User{}
	require.NoError(t, db.First(&user, uint(resp["id"].(float64))).Error)
	assert.Equal(t, "CNY", user.DefaultCurrency)
}

func TestUserHandler_Create_InvalidCurrencyField(t *testing.T) {
	db := setupTestDB(t)
	router := newUserRouter(db)

	// 货币字段违规时错误要落在 default_currency 上，而不是 name
	w := performRequest(router, "POST", "/users", `{"name":"小明","default_currency":"USDD"}`)
	assert.Equal(t, 400, w.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "default_currency", resp.Errors[0].Field)
	assert.NotEmpty(t, resp.Errors[0].Message)
}

func TestUserHandler_Update_InvalidCurrencyField(t *testing.T) {
	db := setupTestDB(t)
	user := models.User{Name: "小明", DefaultCurrency: "USD"}
	require.NoError(t, db.Create(&user).Error)
	router := newUserRouter(db)

	w := performRequest(router, "PUT", fmt.Sprintf("/users/%d", user.ID), `{"default_currency":"X"}`)
	assert.Equal(t, 400, w.Code)

	var resp ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "default_currency", resp.Errors[0].Field)

	// 失败的更新不落库
	var unchanged models.User
	require.NoError(t, db.First(&unchanged, user.ID).Error)
	assert.Equal(t, "USD", unchanged.DefaultCurrency)
}

func TestUserHandler_Update_Partial(t *testing.T) {
	db := setupTestDB(t)
	user := models.User{Name: "小明", DefaultCurrency: "USD"}
	require.NoError(t, db.Create(&user).Error)
	router := newUserRouter(db)

	// 只给货币时名称保持原值
	w := performRequest(router, "PUT", fmt.Sprintf("/users/%d", user.ID), `{"default_currency":"eur"}`)
	assert.Equal(t, 200, w.Code)

	var updated models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "小明", updated.Name)
	assert.Equal(t, "EUR", updated.DefaultCurrency)

	// 空请求体不修改任何字段
	w = performRequest(router, "PUT", fmt.Sprintf("/users/%d", user.ID), `{}`)
	assert.Equal(t, 200, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "小明", updated.Name)
	assert.Equal(t, "EUR", updated.DefaultCurrency)

	w = performRequest(router, "PUT", "/users/9999", `{"name":"谁"}`)
	assert.Equal(t, 404, w.Code)
}

func TestUserHandler_Delete(t *testing.T) {
	db := setupTestDB(t)
	user := models.User{Name: "小明", DefaultCurrency: "USD"}
	require.NoError(t, db.Create(&user).Error)
	router := newUserRouter(db)

	w := performRequest(router, "DELETE", fmt.Sprintf("/users/%d", user.ID), "")
	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "用户删除成功", resp["message"])

	w = performRequest(router, "DELETE", fmt.Sprintf("/users/%d", user.ID), "")
	assert.Equal(t, 404, w.Code)
}
