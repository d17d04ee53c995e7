package router

import (
	"time"

	"moneybook/api"
	"moneybook/config"
	_ "moneybook/docs"
	"moneybook/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
// 数据库句柄在这里注入到各个处理器，不使用包级全局状态
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 写操作限流
	r.Use(middleware.WriteRateLimit(120, time.Minute))

	// 交易记录
	transactionHandler := api.NewTransactionHandler(db)
	r.GET("/transactions", transactionHandler.List)
	r.POST("/transactions", transactionHandler.Create)

	// 统计
	statsHandler := api.NewStatsHandler(db)
	r.GET("/stats/summary", statsHandler.Summary)
	r.GET("/stats/categories", statsHandler.Categories)

	// 收入类别
	incomeCategoryHandler := api.NewIncomeCategoryHandler(db)
	r.GET("/income-categories", incomeCategoryHandler.List)
	r.POST("/income-categories", incomeCategoryHandler.Create)
	r.PUT("/income-categories/:id", incomeCategoryHandler.Update)
	r.DELETE("/income-categories/:id", incomeCategoryHandler.Delete)

	// 支出分组
	expenseGroupHandler := api.NewExpenseGroupHandler(db)
	r.GET("/expense-groups", expenseGroupHandler.List)
	r.POST("/expense-groups", expenseGroupHandler.Create)
	r.PUT("/expense-groups/:id", expenseGroupHandler.Update)
	r.DELETE("/expense-groups/:id", expenseGroupHandler.Delete)

	// 支出类别
	expenseCategoryHandler := api.NewExpenseCategoryHandler(db)
	r.GET("/expense-categories", expenseCategoryHandler.List)
	r.POST("/expense-categories", expenseCategoryHandler.Create)
	r.PUT("/expense-categories/:id", expenseCategoryHandler.Update)
	r.DELETE("/expense-categories/:id", expenseCategoryHandler.Delete)

	// 用户
	userHandler := api.NewUserHandler(db)
	r.GET("/users", userHandler.List)
	r.POST("/users", userHandler.Create)
	r.PUT("/users/:id", userHandler.Update)
	r.DELETE("/users/:id", userHandler.Delete)

	// 导出
	exportHandler := api.NewExportHandler(db)
	r.GET("/export/csv", exportHandler.ExportCSV)
	r.GET("/export/json", exportHandler.ExportJSON)
	r.GET("/export/excel", exportHandler.ExportExcel)

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
