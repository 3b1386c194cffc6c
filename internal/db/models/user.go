package models

import (
	"time"

	"gorm.io/gorm"
)

// User owns apps and authenticates admin requests with an API key.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey" binding:"required"`
	Name      string         `json:"name" gorm:"uniqueIndex"`
	Apps      []App          `json:"-" gorm:"foreignKey:OwnerID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u User) TableName() string {
	return "users"
}

func FindUserByID(db *gorm.DB, id uint) (User, error) {
	var user User
	err := db.First(&user, id).Error
	return user, err
}

// FindOrCreateUser returns the user with the given name, creating it when missing.
func FindOrCreateUser(db *gorm.DB, name string) (User, error) {
	var user User
	err := db.Where(&User{Name: name}).FirstOrCreate(&user).Error
	return user, err
}
