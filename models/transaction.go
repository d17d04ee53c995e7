package models

import (
	"time"
)

// 交易类型常量
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction 交易记录模型
// category_id 按 type 指向 income_categories 或 expense_categories，
// 数据库层无法表达这种按类型切换的外键，写入时的存在性校验是唯一的约束点
type Transaction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:10;not null;index"` // income 或 expense
	Amount      float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency    string    `json:"currency" gorm:"size:3;not null"` // 3位大写货币代码
	CategoryID  uint      `json:"category_id" gorm:"not null;index"`
	Date        time.Time `json:"date" gorm:"not null;index"`
	Description string    `json:"description" gorm:"size:255"`
	UserID      uint      `json:"user_id" gorm:"not null;default:1;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionWithCategory 带类别名称的交易记录（列表/导出查询结果）
type TransactionWithCategory struct {
	Transaction
	CategoryName string `json:"category_name"`
}

// IsValidType 校验交易类型取值
func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}
