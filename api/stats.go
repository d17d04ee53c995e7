package api

import (
	"net/http"
	"time"

	"moneybook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatsHandler 统计处理器
type StatsHandler struct {
	db *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

// SummaryResponse 收支汇总返回
type SummaryResponse struct {
	TotalIncome  float64 `json:"total_income" example:"5000.00"`  // 收入总和
	TotalExpense float64 `json:"total_expense" example:"123.45"` // 支出总和
	Balance      float64 `json:"balance" example:"4876.55"`      // 收入减支出
}

// CategoryStat 按类别统计行
type CategoryStat struct {
	Category     string  `json:"category"`
	Total        float64 `json:"total"`
	Transactions int64   `json:"transactions"`
}

// parseDateRange 解析可选的 start_date/end_date 参数
// 返回的 end 已包含结束日期当天
func parseDateRange(c *gin.Context) (start, end *time.Time, errs []FieldError) {
	if v := c.Query("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "start_date", Message: "日期格式错误，应为: 2006-01-02"})
		} else {
			start = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "end_date", Message: "日期格式错误，应为: 2006-01-02"})
		} else {
			t = t.Add(24*time.Hour - time.Second)
			end = &t
		}
	}
	return start, end, errs
}

// Summary 获取收支汇总
// @Summary 获取收支汇总
// @Description 按可选日期范围统计收入总和、支出总和与结余。范围内无交易时返回全零，而不是错误
// @Tags 统计
// @Produce json
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} SummaryResponse "获取成功"
// @Failure 400 {object} ValidationResponse "日期参数错误"
// @Router /stats/summary [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	start, end, errs := parseDateRange(c)
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	query := h.db.Model(&models.Transaction{})
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}

	var summary SummaryResponse
	if err := query.Select(
		"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS total_income, " +
			"COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expense, " +
			"COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0) AS balance").
		Scan(&summary).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Categories 按类别统计
// @Summary 获取按类别统计
// @Description 按必填的交易类型和可选日期范围统计每个类别的交易金额与笔数，按金额降序。只返回至少有一笔匹配交易的类别
// @Tags 统计
// @Produce json
// @Param type query string true "交易类型" Enums(income,expense)
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {array} CategoryStat "获取成功"
// @Failure 400 {object} ValidationResponse "参数错误"
// @Router /stats/categories [get]
func (h *StatsHandler) Categories(c *gin.Context) {
	start, end, errs := parseDateRange(c)

	txType := c.Query("type")
	if !models.IsValidType(txType) {
		errs = append(errs, FieldError{Field: "type", Message: "交易类型必须为 income 或 expense"})
	}
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	categoryTable := models.IncomeCategory{}.TableName()
	if txType == models.TypeExpense {
		categoryTable = models.ExpenseCategory{}.TableName()
	}

	query := h.db.Table("transactions t").
		Select("c.name AS category, SUM(t.amount) AS total, COUNT(t.id) AS transactions").
		Joins("JOIN "+categoryTable+" c ON t.category_id = c.id").
		Where("t.type = ?", txType)
	if start != nil {
		query = query.Where("t.date >= ?", *start)
	}
	if end != nil {
		query = query.Where("t.date <= ?", *end)
	}

	stats := make([]CategoryStat, 0)
	if err := query.Group("c.id").Order("total DESC").Scan(&stats).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	c.JSON(http.StatusOK, stats)
}
