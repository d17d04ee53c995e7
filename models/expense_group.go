package models

import (
	"time"
)

// ExpenseGroup 支出分组
// 名称全局唯一，拥有零或多个支出类别；删除时把成员类别的 group_id 置空
type ExpenseGroup struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ExpenseGroup) TableName() string {
	return "expense_groups"
}
