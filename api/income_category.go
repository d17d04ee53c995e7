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

// IncomeCategoryHandler 收入类别管理
type IncomeCategoryHandler struct {
	db *gorm.DB
}

func NewIncomeCategoryHandler(db *gorm.DB) *IncomeCategoryHandler {
	return &IncomeCategoryHandler{db: db}
}

type IncomeCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=50"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// List 列出所有收入类别
// @Summary 获取收入类别列表
// @Tags 收入类别
// @Produce json
// @Success 200 {array} models.IncomeCategory "获取成功"
// @Router /income-categories [get]
func (h *IncomeCategoryHandler) List(c *gin.Context) {
	var list []models.IncomeCategory
	if err := h.db.Order("id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create 创建收入类别
// @Summary 创建收入类别
// @Description 创建新的收入类别，名称全局唯一
// @Tags 收入类别
// @Accept json
// @Produce json
// @Param request body IncomeCategoryRequest true "类别信息"
// @Success 200 {object} map[string]interface{} "创建成功，返回新ID"
// @Failure 400 {object} ValidationResponse "参数错误"
// @Failure 409 {object} ErrorResponse "类别名称已存在"
// @Router /income-categories [post]
func (h *IncomeCategoryHandler) Create(c *gin.Context) {
	var req IncomeCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		ValidationFailed(c, []FieldError{{Field: "name", Message: "名称不能为空"}})
		return
	}

	// 唯一性
	var existing models.IncomeCategory
	err := h.db.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		Conflict(c, "类别名称已存在")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	cat := models.IncomeCategory{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.db.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": cat.ID})
}

// Update 更新收入类别
// @Summary 更新收入类别
// @Tags 收入类别
// @Accept json
// @Produce json
// @Param id path int true "类别ID"
// @Param request body IncomeCategoryRequest true "类别信息"
// @Success 200 {object} models.IncomeCategory "更新成功"
// @Failure 400 {object} ErrorResponse "参数错误"
// @Failure 404 {object} ErrorResponse "类别不存在"
// @Failure 409 {object} ErrorResponse "类别名称已存在"
// @Router /income-categories/{id} [put]
func (h *IncomeCategoryHandler) Update(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.IncomeCategory
	if err := h.db.First(&cat, uint(id64)).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	var req IncomeCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		ValidationFailed(c, []FieldError{{Field: "name", Message: "名称不能为空"}})
		return
	}

	// 唯一性校验，排除自身
	var existing models.IncomeCategory
	dupErr := h.db.Where("name = ? AND id != ?", req.Name, cat.ID).First(&existing).Error
	if dupErr == nil {
		Conflict(c, "类别名称已存在")
		return
	}
	if !errors.Is(dupErr, gorm.ErrRecordNotFound) {
		InternalError(c, SafeErrorMessage(dupErr, "查询失败"))
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": strings.TrimSpace(req.Description),
	}
	if err := h.db.Model(&cat).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	h.db.First(&cat, cat.ID)
	c.JSON(http.StatusOK, cat)
}

// Delete 删除收入类别
// @Summary 删除收入类别
// @Description 存在引用该类别的收入交易时拒绝删除
// @Tags 收入类别
// @Produce json
// @Param id path int true "类别ID"
// @Success 200 {object} map[string]interface{} "删除成功"
// @Failure 400 {object} ErrorResponse "无效的ID"
// @Failure 404 {object} ErrorResponse "类别不存在"
// @Failure 409 {object} ErrorResponse "存在关联交易"
// @Router /income-categories/{id} [delete]
func (h *IncomeCategoryHandler) Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.IncomeCategory
	if err := h.db.First(&cat, uint(id64)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "类别不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 被交易引用时拒绝删除（按类型匹配的外键无法在库层表达，这里是唯一约束点）
	var refCount int64
	h.db.Model(&models.Transaction{}).
		Where("type = ? AND category_id = ?", models.TypeIncome, cat.ID).
		Count(&refCount)
	if refCount > 0 {
		ConflictWithSolution(c, "无法删除：存在关联的交易记录", "请先删除或改派相关交易")
		return
	}

	if err := h.db.Delete(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功", "deletedId": cat.ID})
}
