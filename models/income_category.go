package models

import (
	"time"
)

// IncomeCategory 收入类别
// 名称全局唯一，被 type=income 的交易引用
type IncomeCategory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (IncomeCategory) TableName() string {
	return "income_categories"
}
