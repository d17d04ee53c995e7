package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"moneybook/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	db *gorm.DB
}

// NewExportHandler 创建导出处理器
func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// queryExportRows 按可选日期范围查询交易（带类别名称），按日期降序
func (h *ExportHandler) queryExportRows(start, end *time.Time) ([]models.TransactionWithCategory, error) {
	query := h.db.Model(&models.Transaction{}).
		Select("transactions.*, COALESCE(ic.name, ec.name) AS category_name").
		Joins("LEFT JOIN income_categories ic ON transactions.type = 'income' AND transactions.category_id = ic.id").
		Joins("LEFT JOIN expense_categories ec ON transactions.type = 'expense' AND transactions.category_id = ec.id")
	if start != nil {
		query = query.Where("transactions.date >= ?", *start)
	}
	if end != nil {
		query = query.Where("transactions.date <= ?", *end)
	}

	var rows []models.TransactionWithCategory
	err := query.Order("transactions.date DESC, transactions.id ASC").Scan(&rows).Error
	return rows, err
}

// ExportCSV 导出交易记录为 CSV
// @Summary 导出交易记录为 CSV
// @Description 按可选日期范围导出交易记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} ValidationResponse "日期参数错误"
// @Router /export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	start, end, errs := parseDateRange(c)
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	rows, err := h.queryExportRows(start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 生成 CSV
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	// 写入表头
	headers := []string{"ID", "类型", "金额", "货币", "类别", "描述", "日期"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 写入数据
	for _, tx := range rows {
		record := []string{
			fmt.Sprintf("%d", tx.ID),
			tx.Type,
			fmt.Sprintf("%.2f", tx.Amount),
			tx.Currency,
			tx.CategoryName,
			tx.Description,
			tx.Date.Format("2006-01-02"),
		}
		if err := writer.Write(record); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 设置响应头
	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出交易记录为 JSON
// @Summary 导出交易记录为 JSON
// @Description 按可选日期范围导出交易记录及汇总信息
// @Tags 导出
// @Produce json
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} map[string]interface{} "导出成功"
// @Failure 400 {object} ValidationResponse "日期参数错误"
// @Router /export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	start, end, errs := parseDateRange(c)
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	rows, err := h.queryExportRows(start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 计算汇总信息
	var totalIncome, totalExpense float64
	for _, tx := range rows {
		if tx.Type == models.TypeIncome {
			totalIncome += tx.Amount
		} else {
			totalExpense += tx.Amount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_count":   len(rows),
		"total_income":  totalIncome,
		"total_expense": totalExpense,
		"transactions":  rows,
	})
}

// ExportExcel 导出交易记录为 Excel
// @Summary 导出交易记录为 Excel
// @Description 按可选日期范围导出交易记录为 XLSX 文件
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} ValidationResponse "日期参数错误"
// @Router /export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	start, end, errs := parseDateRange(c)
	if len(errs) > 0 {
		ValidationFailed(c, errs)
		return
	}

	rows, err := h.queryExportRows(start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 创建 Excel 文件
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "交易记录"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 20)
	f.SetColWidth(sheetName, "F", "F", 30)
	f.SetColWidth(sheetName, "G", "G", 14)

	// 写入表头
	headers := []string{"ID", "类型", "金额", "货币", "类别", "描述", "日期"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 写入数据
	for i, tx := range rows {
		rowIdx := i + 2
		values := []interface{}{
			tx.ID,
			tx.Type,
			tx.Amount,
			tx.Currency,
			tx.CategoryName,
			tx.Description,
			tx.Date.Format("2006-01-02"),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowIdx)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
