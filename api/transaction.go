package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moneybook/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 分页默认值与上限
// 默认每页 50 条（历史版本在 10 和 50 之间摇摆，这里固定为 50）
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// TransactionHandler 交易记录处理器
type TransactionHandler struct {
	db *gorm.DB
}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// CreateTransactionRequest 创建交易请求
// 字段校验手动完成，以便一次返回所有违规字段
type CreateTransactionRequest struct {
	Type        string  `json:"type" example:"expense"`
	Amount      float64 `json:"amount" example:"12.5"`
	Currency    string  `json:"currency" example:"USD"`
	CategoryID  uint    `json:"category_id" example:"3"`
	Date        string  `json:"date" example:"2024-01-15"`
	Description string  `json:"description" example:"午餐"`
}

// TransactionFilter 交易列表的结构化筛选条件
// 代替字符串拼 SQL：每个字段编译成一个参数化条件，天然保留白名单约束
type TransactionFilter struct {
	Type       string
	CategoryID uint
	StartDate  *time.Time
	EndDate    *time.Time
	MinAmount  *float64
	MaxAmount  *float64
}

// Apply 把筛选条件编译为参数化查询片段，条件之间为 AND
func (f *TransactionFilter) Apply(query *gorm.DB) *gorm.DB {
	if f.Type != "" {
		query = query.Where("transactions.type = ?", f.Type)
	}
	if f.CategoryID > 0 {
		query = query.Where("transactions.category_id = ?", f.CategoryID)
	}
	if f.StartDate != nil {
		query = query.Where("transactions.date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		// 包含结束日期当天
		query = query.Where("transactions.date <= ?", f.EndDate.Add(24*time.Hour-time.Second))
	}
	if f.MinAmount != nil {
		query = query.Where("transactions.amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		query = query.Where("transactions.amount <= ?", *f.MaxAmount)
	}
	return query
}

// parseDate 解析 YYYY-MM-DD 格式日期
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建收入或支出交易。category_id 必须存在于与 type 对应的类别表中；货币代码写入前转为大写
// @Tags 交易记录
// @Accept json
// @Produce json
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} map[string]interface{} "创建成功，返回新ID"
// @Failure 400 {object} ValidationResponse "字段校验失败"
// @Failure 500 {object} ErrorResponse "创建失败"
// @Router /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请求体格式错误")
		return
	}

	// 收集全部违规字段后一次性返回
	var errs []FieldError
	if !models.IsValidType(req.Type) {
		errs = append(errs, FieldError{Field: "type", Message: "交易类型必须为 income 或 expense"})
	}
	if req.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "金额必须为正数"})
	}
	if len(req.Currency) != 3 {
		errs = append(errs, FieldError{Field: "currency", Message: "货币代码必须为3个字符"})
	}
	if req.CategoryID == 0 {
		errs = append(errs, FieldError{Field: "category_id", Message: "类别ID必须为正整数"})
	}
	date, dateErr := parseDate(req.Date)
	if dateErr != nil {
		errs = append(errs, FieldError{Field: "date", Message: "日期格式错误，应为: 2006-01-02"})
	}
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	// 校验类别在与类型对应的表中存在
	var exists int64
	if req.Type == models.TypeIncome {
		h.db.Model(&models.IncomeCategory{}).Where("id = ?", req.CategoryID).Count(&exists)
	} else {
		h.db.Model(&models.ExpenseCategory{}).Where("id = ?", req.CategoryID).Count(&exists)
	}
	if exists == 0 {
		BadRequest(c, "指定类型下不存在该类别")
		return
	}

	tx := models.Transaction{
		Type:        req.Type,
		Amount:      req.Amount,
		Currency:    strings.ToUpper(req.Currency),
		CategoryID:  req.CategoryID,
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		UserID:      models.DefaultUserID,
	}
	if err := h.db.Create(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易记录失败"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": tx.ID})
}

// List 获取交易记录列表
// @Summary 获取交易记录列表
// @Description 支持类型/类别/日期区间/金额区间筛选（AND 组合）、date 或 amount 排序和分页。返回的每行带有与其类型匹配的类别名称
// @Tags 交易记录
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量 (1-100)" default(50)
// @Param sort query string false "排序字段" Enums(date,amount)
// @Param order query string false "排序方向" Enums(asc,desc)
// @Param type query string false "交易类型" Enums(income,expense)
// @Param category_id query int false "类别ID"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Param min_amount query number false "最小金额（含）"
// @Param max_amount query number false "最大金额（含）"
// @Success 200 {object} PageResponse "获取成功"
// @Failure 400 {object} ValidationResponse "参数错误"
// @Failure 500 {object} ErrorResponse "查询失败"
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var errs []FieldError

	page := 1
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, FieldError{Field: "page", Message: "页码必须为不小于1的整数"})
		} else {
			page = n
		}
	}

	limit := DefaultPageLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxPageLimit {
			errs = append(errs, FieldError{Field: "limit", Message: "每页数量必须在1到100之间"})
		} else {
			limit = n
		}
	}

	sort := "date"
	if v := c.Query("sort"); v != "" {
		if v != "date" && v != "amount" {
			errs = append(errs, FieldError{Field: "sort", Message: "排序字段只能为 date 或 amount"})
		} else {
			sort = v
		}
	}

	order := "desc"
	if v := c.Query("order"); v != "" {
		if v != "asc" && v != "desc" {
			errs = append(errs, FieldError{Field: "order", Message: "排序方向只能为 asc 或 desc"})
		} else {
			order = v
		}
	}

	var filter TransactionFilter
	if v := c.Query("type"); v != "" {
		if !models.IsValidType(v) {
			errs = append(errs, FieldError{Field: "type", Message: "交易类型必须为 income 或 expense"})
		} else {
			filter.Type = v
		}
	}
	if v := c.Query("category_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			errs = append(errs, FieldError{Field: "category_id", Message: "类别ID必须为正整数"})
		} else {
			filter.CategoryID = uint(n)
		}
	}
	if v := c.Query("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "start_date", Message: "日期格式错误，应为: 2006-01-02"})
		} else {
			filter.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "end_date", Message: "日期格式错误，应为: 2006-01-02"})
		} else {
			filter.EndDate = &t
		}
	}
	if v := c.Query("min_amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, FieldError{Field: "min_amount", Message: "金额必须为数字"})
		} else {
			filter.MinAmount = &f
		}
	}
	if v := c.Query("max_amount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, FieldError{Field: "max_amount", Message: "金额必须为数字"})
		} else {
			filter.MaxAmount = &f
		}
	}
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	// 总数：同一筛选条件的并行计数查询，不受排序和分页影响
	var total int64
	if err := filter.Apply(h.db.Model(&models.Transaction{})).Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 列表：按行类型带出所属类别名称
	query := filter.Apply(h.db.Model(&models.Transaction{})).
		Select("transactions.*, COALESCE(ic.name, ec.name) AS category_name").
		Joins("LEFT JOIN income_categories ic ON transactions.type = 'income' AND transactions.category_id = ic.id").
		Joins("LEFT JOIN expense_categories ec ON transactions.type = 'expense' AND transactions.category_id = ec.id")

	// id 作为第二排序键，保证翻页结果稳定不重复
	offset := (page - 1) * limit
	rows := make([]models.TransactionWithCategory, 0, limit)
	if err := query.
		Order("transactions." + sort + " " + strings.ToUpper(order) + ", transactions.id ASC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	c.JSON(http.StatusOK, PageResponse{
		Data: rows,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}
