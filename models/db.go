package models

import (
	"log"
	"time"

	"storybook-server/config"

	_ "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var GormDB *gorm.DB

// InitDB 初始化 run ledger 数据库。DSN 为空时跳过，
// 核心流水线不依赖 MySQL，只是少了生成留痕。
func InitDB() {
	if config.AppConfig == nil {
		log.Fatal("config.AppConfig is nil, call config.InitConfig first")
	}
	dsn := config.AppConfig.MySQL.DSN
	if dsn == "" {
		log.Println("mysql.dsn 未配置，run ledger 已禁用")
		return
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("GORM 初始化失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取数据库连接失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}

	// 自动建表
	if err := db.AutoMigrate(&Run{}); err != nil {
		log.Printf("run 表迁移失败: %v", err)
	}

	GormDB = db
	log.Println("数据库连接成功 (GORM)")
}
