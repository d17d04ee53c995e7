package models

import (
	"time"
)

// DefaultUserID 默认用户ID，交易记录未指定用户时归属于它
const DefaultUserID = 1

// User 用户模型
// 本地单用户场景：交易默认归属 id=1 的用户
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Name            string    `json:"name" gorm:"size:50;not null"`
	DefaultCurrency string    `json:"default_currency" gorm:"size:3;not null;default:USD"` // 3位货币代码，如 USD
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}
