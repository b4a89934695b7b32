package shop

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

// User 用户实体
type User struct {
	actor.Hooks[struct{}]

	ID     string
	Name   string
	Email  string
	Active bool
}

// UserCreate 创建用户载荷
type UserCreate struct {
	Name  string
	Email string
}

// UserUpdate 更新用户，nil 字段保持不变
type UserUpdate struct {
	Name  *string
	Email *string
}

// UserAction 用户动作
type UserAction int

const (
	// ActivateUser 激活用户
	ActivateUser UserAction = iota
	// DeactivateUser 停用用户
	DeactivateUser
)

func (a UserAction) String() string {
	switch a {
	case ActivateUser:
		return "activate"
	case DeactivateUser:
		return "deactivate"
	default:
		return fmt.Sprintf("UserAction(%d)", int(a))
	}
}

// NewUser 构造用户，新用户默认处于激活状态
func NewUser(id string, params UserCreate) (*User, error) {
	u := &User{ID: id, Active: true}
	if err := u.apply(&params.Name, &params.Email); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) apply(name, email *string) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidUser)
		}
		u.Name = n
	}
	if email != nil {
		addr, err := mail.ParseAddress(*email)
		if err != nil {
			return fmt.Errorf("%w: email %q: %v", ErrInvalidUser, *email, err)
		}
		u.Email = addr.Address
	}
	return nil
}

// Clone 返回用户副本
func (u *User) Clone() *User {
	c := *u
	return &c
}

// OnUpdate 修改姓名和邮箱
func (u *User) OnUpdate(_ context.Context, update UserUpdate, _ struct{}) error {
	return u.apply(update.Name, update.Email)
}

// HandleAction 切换激活状态，返回状态是否发生变化
func (u *User) HandleAction(_ context.Context, action UserAction, _ struct{}) (bool, error) {
	switch action {
	case ActivateUser:
		changed := !u.Active
		u.Active = true
		return changed, nil
	case DeactivateUser:
		changed := u.Active
		u.Active = false
		return changed, nil
	default:
		return false, fmt.Errorf("unsupported user action %s", action)
	}
}
