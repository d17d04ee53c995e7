package models

import (
	"time"
)

// ExpenseCategory 支出类别
// group_id 可空（NULL 表示未分组），(group_id, name) 组合唯一，
// NULL 分组视为可匹配的值。SQLite 的唯一索引把 NULL 当作互不相等，
// 所以组合唯一性由写入前的查重保证，索引只用于加速查询。
type ExpenseCategory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GroupID   *uint     `json:"group_id" gorm:"index:idx_expense_categories_group_name"`
	Name      string    `json:"name" gorm:"size:50;not null;index:idx_expense_categories_group_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ExpenseCategory) TableName() string {
	return "expense_categories"
}
