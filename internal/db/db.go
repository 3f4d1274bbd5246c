package db

import (
	"log"
	"os"
	"playto/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=playto port=5432 sslmode=disable TimeZone=UTC"
	}

	var err error
	// TranslateError 让唯一约束冲突统一转成 gorm.ErrDuplicatedKey，点赞引擎依赖它识别并发冲突
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	// 本地开发演示数据
	if os.Getenv("SEED_DEMO") == "1" {
		seedDemo()
	}
}

// Migrate 执行全部模型迁移，测试里对 SQLite 库复用同一份
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.LikeRecord{},
		&models.KarmaEntry{},
	)
}
