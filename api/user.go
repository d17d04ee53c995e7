package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"moneybook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler 用户管理
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type UserCreateRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=50"`
	DefaultCurrency string `json:"default_currency" binding:"omitempty,len=3"`
}

type UserUpdateRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=50"`
	DefaultCurrency *string `json:"default_currency" binding:"omitempty,len=3"`
}

// List 列出所有用户
// @Summary 获取用户列表
// @Tags 用户
// @Produce json
// @Success 200 {array} models.User "获取成功"
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var list []models.User
	if err := h.db.Order("id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create 创建用户
// @Summary 创建用户
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body UserCreateRequest true "用户信息"
// @Success 200 {object} map[string]interface{} "创建成功，返回新ID"
// @Failure 400 {object} ValidationResponse "参数错误"
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req UserCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		ValidationFailed(c, []FieldError{{Field: "name", Message: "名称不能为空"}})
		return
	}

	currency := "USD"
	if req.DefaultCurrency != "" {
		currency = strings.ToUpper(req.DefaultCurrency)
	}

	user := models.User{Name: req.Name, DefaultCurrency: currency}
	if err := h.db.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID})
}

// Update 更新用户
// @Summary 更新用户
// @Description 部分更新：只修改请求中给出的字段，未给出的保持原值
// @Tags 用户
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body UserUpdateRequest true "用户信息"
// @Success 200 {object} models.User "更新成功"
// @Failure 400 {object} ErrorResponse "参数错误"
// @Failure 404 {object} ErrorResponse "用户不存在"
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var user models.User
	if err := h.db.First(&user, uint(id64)).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	var req UserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	// COALESCE 式部分更新：只写入提供了的字段
	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			ValidationFailed(c, []FieldError{{Field: "name", Message: "名称不能为空"}})
			return
		}
		updates["name"] = name
	}
	if req.DefaultCurrency != nil {
		updates["default_currency"] = strings.ToUpper(*req.DefaultCurrency)
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, user)
		return
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	h.db.First(&user, user.ID)
	c.JSON(http.StatusOK, user)
}

// Delete 删除用户
// @Summary 删除用户
// @Description 删除用户不级联删除其交易记录
// @Tags 用户
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} map[string]interface{} "删除成功"
// @Failure 400 {object} ErrorResponse "无效的ID"
// @Failure 404 {object} ErrorResponse "用户不存在"
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	res := h.db.Delete(&models.User{}, uint(id64))
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			NotFound(c, "用户不存在")
			return
		}
		InternalError(c, SafeErrorMessage(res.Error, "删除失败"))
		return
	}
	if res.RowsAffected == 0 {
		NotFound(c, "用户不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "用户删除成功", "deletedId": uint(id64)})
}
