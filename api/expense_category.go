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

// ExpenseCategoryHandler 支出类别管理
type ExpenseCategoryHandler struct {
	db *gorm.DB
}

func NewExpenseCategoryHandler(db *gorm.DB) *ExpenseCategoryHandler {
	return &ExpenseCategoryHandler{db: db}
}

type ExpenseCategoryRequest struct {
	GroupID *uint  `json:"group_id" binding:"omitempty,gt=0"`
	Name    string `json:"name" binding:"required,min=1,max=50"`
}

// findDuplicate 按 (group_id, name) 查重，NULL 分组视为可匹配的值
// excludeID 大于 0 时排除该行自身
func (h *ExpenseCategoryHandler) findDuplicate(name string, groupID *uint, excludeID uint) (bool, error) {
	query := h.db.Model(&models.ExpenseCategory{}).Where("name = ?", name)
	if groupID != nil {
		query = query.Where("group_id = ?", *groupID)
	} else {
		query = query.Where("group_id IS NULL")
	}
	if excludeID > 0 {
		query = query.Where("id != ?", excludeID)
	}
	var existing models.ExpenseCategory
	err := query.First(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// List 列出所有支出类别
// @Summary 获取支出类别列表
// @Tags 支出类别
// @Produce json
// @Success 200 {array} models.ExpenseCategory "获取成功"
// @Router /expense-categories [get]
func (h *ExpenseCategoryHandler) List(c *gin.Context) {
	var list []models.ExpenseCategory
	if err := h.db.Order("id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create 创建支出类别
// @Summary 创建支出类别
// @Description 创建支出类别。group_id 可省略表示未分组；(分组, 名称) 组合唯一
// @Tags 支出类别
// @Accept json
// @Produce json
// @Param request body ExpenseCategoryRequest true "类别信息"
// @Success 201 {object} map[string]interface{} "创建成功"
// @Failure 400 {object} ErrorResponse "参数错误或分组不存在"
// @Failure 409 {object} ErrorResponse "该分组下类别已存在"
// @Router /expense-categories [post]
func (h *ExpenseCategoryHandler) Create(c *gin.Context) {
	var req ExpenseCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		ValidationFailed(c, []FieldError{{Field: "name", Message: "名称不能为空"}})
		return
	}

	// 指定了分组时校验其存在
	if req.GroupID != nil {
		var group models.ExpenseGroup
		if err := h.db.First(&group, *req.GroupID).Error; err != nil {
			BadRequest(c, "指定的分组不存在")
			return
		}
	}

	dup, err := h.findDuplicate(req.Name, req.GroupID, 0)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if dup {
		Conflict(c, "该分组下类别已存在")
		return
	}

	cat := models.ExpenseCategory{GroupID: req.GroupID, Name: req.Name}
	if err := h.db.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       cat.ID,
		"group_id": cat.GroupID,
		"name":     cat.Name,
		"message":  "类别创建成功",
	})
}

// Update 更新支出类别
// @Summary 更新支出类别
// @Tags 支出类别
// @Accept json
// @Produce json
// @Param id path int true "类别ID"
// @Param request body ExpenseCategoryRequest true "类别信息"
// @Success 200 {object} models.ExpenseCategory "更新成功"
// @Failure 400 {object} ErrorResponse "参数错误或分组不存在"
// @Failure 404 {object} ErrorResponse "类别不存在"
// @Failure 409 {object} ErrorResponse "该分组下类别已存在"
// @Router /expense-categories/{id} [put]
func (h *ExpenseCategoryHandler) Update(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.ExpenseCategory
	if err := h.db.First(&cat, uint(id64)).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	var req ExpenseCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		ValidationFailed(c, []FieldError{{Field: "name", Message: "名称不能为空"}})
		return
	}

	if req.GroupID != nil {
		var group models.ExpenseGroup
		if err := h.db.First(&group, *req.GroupID).Error; err != nil {
			BadRequest(c, "指定的分组不存在")
			return
		}
	}

	dup, err := h.findDuplicate(req.Name, req.GroupID, cat.ID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if dup {
		Conflict(c, "该分组下类别已存在")
		return
	}

	updates := map[string]interface{}{
		"name":     req.Name,
		"group_id": req.GroupID,
	}
	if err := h.db.Model(&cat).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	h.db.First(&cat, cat.ID)
	c.JSON(http.StatusOK, cat)
}

// Delete 删除支出类别
// @Summary 删除支出类别
// @Description 存在引用该类别的支出交易时拒绝删除
// @Tags 支出类别
// @Produce json
// @Param id path int true "类别ID"
// @Success 200 {object} map[string]interface{} "删除成功"
// @Failure 400 {object} ErrorResponse "无效的ID"
// @Failure 404 {object} ErrorResponse "类别不存在"
// @Failure 409 {object} ErrorResponse "存在关联交易"
// @Router /expense-categories/{id} [delete]
func (h *ExpenseCategoryHandler) Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.ExpenseCategory
	if err := h.db.First(&cat, uint(id64)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "类别不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var refCount int64
	h.db.Model(&models.Transaction{}).
		Where("type = ? AND category_id = ?", models.TypeExpense, cat.ID).
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
