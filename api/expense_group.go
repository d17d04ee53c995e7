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

// ExpenseGroupHandler 支出分组管理
type ExpenseGroupHandler struct {
	db *gorm.DB
}

func NewExpenseGroupHandler(db *gorm.DB) *ExpenseGroupHandler {
	return &ExpenseGroupHandler{db: db}
}

type ExpenseGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// List 列出所有支出分组
// @Summary 获取支出分组列表
// @Tags 支出分组
// @Produce json
// @Success 200 {array} models.ExpenseGroup "获取成功"
// @Router /expense-groups [get]
func (h *ExpenseGroupHandler) List(c *gin.Context) {
	var list []models.ExpenseGroup
	if err := h.db.Order("id ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	c.JSON(http.StatusOK, list)
}

// Create 创建支出分组
// @Summary 创建支出分组
// @Tags 支出分组
// @Accept json
// @Produce json
// @Param request body ExpenseGroupRequest true "分组信息"
// @Success 200 {object} map[string]interface{} "创建成功，返回新ID"
// @Failure 400 {object} ValidationResponse "参数错误"
// @Failure 409 {object} ErrorResponse "分组名称已存在"
// @Router /expense-groups [post]
func (h *ExpenseGroupHandler) Create(c *gin.Context) {
	var req ExpenseGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		ValidationFailed(c, []FieldError{{Field: "name", Message: "名称不能为空"}})
		return
	}

	// 唯一性
	var existing models.ExpenseGroup
	err := h.db.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		Conflict(c, "分组名称已存在")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	group := models.ExpenseGroup{Name: req.Name}
	if err := h.db.Create(&group).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": group.ID})
}

// Update 更新支出分组
// @Summary 更新支出分组
// @Tags 支出分组
// @Accept json
// @Produce json
// @Param id path int true "分组ID"
// @Param request body ExpenseGroupRequest true "分组信息"
// @Success 200 {object} models.ExpenseGroup "更新成功"
// @Failure 400 {object} ErrorResponse "参数错误"
// @Failure 404 {object} ErrorResponse "分组不存在"
// @Failure 409 {object} ErrorResponse "分组名称已存在"
// @Router /expense-groups/{id} [put]
func (h *ExpenseGroupHandler) Update(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var group models.ExpenseGroup
	if err := h.db.First(&group, uint(id64)).Error; err != nil {
		NotFound(c, "分组不存在")
		return
	}

	var req ExpenseGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		ValidationFailed(c, []FieldError{{Field: "name", Message: "名称不能为空"}})
		return
	}

	// 唯一性校验，排除自身
	var existing models.ExpenseGroup
	dupErr := h.db.Where("name = ? AND id != ?", req.Name, group.ID).First(&existing).Error
	if dupErr == nil {
		Conflict(c, "分组名称已存在")
		return
	}
	if !errors.Is(dupErr, gorm.ErrRecordNotFound) {
		InternalError(c, SafeErrorMessage(dupErr, "查询失败"))
		return
	}

	if err := h.db.Model(&group).Update("name", req.Name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	h.db.First(&group, group.ID)
	c.JSON(http.StatusOK, group)
}

// Delete 删除支出分组
// @Summary 删除支出分组
// @Description 两步事务：先把组内类别的 group_id 置空，再删除分组本身，任一步失败整体回滚
// @Tags 支出分组
// @Produce json
// @Param id path int true "分组ID"
// @Success 200 {object} map[string]interface{} "删除成功，返回被置空的类别数量"
// @Failure 400 {object} ErrorResponse "无效的ID"
// @Failure 404 {object} ErrorResponse "分组不存在"
// @Failure 500 {object} ErrorResponse "删除失败"
// @Router /expense-groups/{id} [delete]
func (h *ExpenseGroupHandler) Delete(c *gin.Context) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}
	id := uint(id64)

	var updated int64
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		// 1. 组内类别解除分组
		res := tx.Model(&models.ExpenseCategory{}).
			Where("group_id = ?", id).
			Update("group_id", nil)
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected

		// 2. 删除分组本身
		del := tx.Delete(&models.ExpenseGroup{}, id)
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			NotFound(c, "分组不存在")
			return
		}
		InternalError(c, SafeErrorMessage(txErr, "删除失败"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "分组删除成功",
		"deletedId":         id,
		"updatedCategories": updated,
	})
}
