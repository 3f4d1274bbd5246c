package db

import (
	"log"
	"playto/internal/models"
	"playto/internal/utils"
)

// seedDemo 创建几个演示用户和内容，方便本地联调（SEED_DEMO=1 时执行）
func seedDemo() {
	var count int64
	DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Demo data already seeded, skipping")
		return
	}

	hash, err := utils.HashPassword("password123")
	if err != nil {
		log.Printf("Failed to hash demo password: %v", err)
		return
	}

	users := []models.User{
		{Username: "alice", Password: hash},
		{Username: "bob", Password: hash},
		{Username: "carol", Password: hash},
	}
	for i := range users {
		if err := DB.Create(&users[i]).Error; err != nil {
			log.Printf("Failed to create demo user %s: %v", users[i].Username, err)
			return
		}
	}

	post := models.Post{
		UserID:  users[0].ID,
		Content: "Hello playto! This is the first post. **Markdown** works here.",
	}
	if err := DB.Create(&post).Error; err != nil {
		log.Printf("Failed to create demo post: %v", err)
		return
	}

	top := models.Comment{PostID: post.ID, UserID: users[1].ID, Content: "First!"}
	DB.Create(&top)
	reply := models.Comment{PostID: post.ID, UserID: users[2].ID, ParentID: &top.ID, Content: "Welcome aboard."}
	DB.Create(&reply)

	// bob 和 carol 给首帖点赞，顺便产生两条 karma 流水
	for _, u := range users[1:] {
		DB.Create(&models.LikeRecord{UserID: u.ID, TargetKind: models.TargetPost, TargetID: post.ID})
		DB.Create(&models.KarmaEntry{UserID: post.UserID, Delta: models.TargetPost.KarmaDelta(), TargetKind: models.TargetPost})
	}

	log.Println("Demo data created successfully")
}
