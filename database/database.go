package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"moneybook/config"
	"moneybook/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 打开本地 SQLite 数据库并完成建表
// 返回的句柄由调用方注入到各个处理器，不保存任何包级全局状态
func Open(cfg *config.Config) (*gorm.DB, error) {
	// 确保数据库所在目录存在
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	// 开启外键约束
	dsn := cfg.Database.Path + "?_foreign_keys=on"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("数据库初始化成功:", cfg.Database.Path)
	return db, nil
}

// Migrate 自动迁移数据库表并初始化种子数据（测试也直接复用）
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.IncomeCategory{},
		&models.ExpenseGroup{},
		&models.ExpenseCategory{},
		&models.Transaction{},
	); err != nil {
		return err
	}

	// 初始化默认用户（仅当表为空时），保证交易的 user_id 默认值可解析
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		if err := db.Create(&models.User{
			ID:              models.DefaultUserID,
			Name:            "默认用户",
			DefaultCurrency: "USD",
		}).Error; err != nil {
			return err
		}
	}

	return nil
}
