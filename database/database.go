// File: /database/database.go
package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"runcrew-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Info),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Auto migrate all models
	err := db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.Crew{},
		&models.CrewMembership{},
		&models.Notice{},
		&models.Notification{},
		&models.DomainEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	if err := addDatabaseConstraints(db); err != nil {
		return fmt.Errorf("failed to add database constraints: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Composite indexes for the hot query paths

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_target_created ON notifications(target_user_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for notifications: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_target_unread ON notifications(target_user_id, is_read)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for unread notifications: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notices_crew_created ON notices(crew_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for notices: %v\n", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_memberships_user_status ON crew_memberships(user_id, status)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for crew_memberships: %v\n", err)
	}

	return nil
}

func addDatabaseConstraints(db *gorm.DB) error {
	// Prevent duplicate follows
	if err := db.Exec("ALTER TABLE follows ADD CONSTRAINT uk_follows_follower_following UNIQUE (follower_id, following_id)").Error; err != nil {
		// Ignore error if constraint already exists
		fmt.Printf("Warning: Could not add unique constraint for follows: %v\n", err)
	}

	// Prevent self-following
	if err := db.Exec("ALTER TABLE follows ADD CONSTRAINT ck_follows_no_self_follow CHECK (follower_id != following_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for follows: %v\n", err)
	}

	// One membership record per user per crew
	if err := db.Exec("ALTER TABLE crew_memberships ADD CONSTRAINT uk_crew_memberships_crew_user UNIQUE (crew_id, user_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for crew_memberships: %v\n", err)
	}

	// Prevent duplicate friendships
	if err := db.Exec("ALTER TABLE friendships ADD CONSTRAINT uk_friendships_pair UNIQUE (user1_id, user2_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for friendships: %v\n", err)
	}

	return nil
}
