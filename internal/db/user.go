package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了后台管理员账号
type User struct {
	gorm.Model
	Username string `gorm:"size:100;unique;not null"`
	Password string `gorm:"not null" json:"-"`
}

// EnsureUser 同步环境变量中的管理员账号：不存在则创建，密码与已存哈希不一致时重新哈希写回。
// 用户名或密码为空时不做任何事。
func EnsureUser(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	err := gdb.Where("username = ?", trimmedUser).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return err
	case bcrypt.CompareHashAndPassword([]byte(existing.Password), []byte(trimmedPassword)) == nil:
		return nil
	}

	_, err = SetPassword(gdb, trimmedUser, trimmedPassword)
	return err
}

// SetPassword 创建或重置管理员账号的密码。
func SetPassword(gdb *gorm.DB, username, password string) (*User, error) {
	trimmedUser := strings.TrimSpace(username)
	if trimmedUser == "" || strings.TrimSpace(password) == "" {
		return nil, errors.New("username and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user User
	err = gdb.Where("username = ?", trimmedUser).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = User{Username: trimmedUser, Password: string(hashed)}
		if err := gdb.Create(&user).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := gdb.Model(&user).Update("password", string(hashed)).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}
