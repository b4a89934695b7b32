package actor

import (
	"fmt"
	"strings"
)

// Message Actor 消息接口
// 邮箱中传递的所有请求都必须实现此接口
type Message interface {
	// Kind 返回消息类型标识，用于日志和监控
	Kind() string
	// Op 返回请求对应的操作类型
	Op() Op
}

// Op 请求操作类型
type Op int

const (
	// OpCreate 创建实体
	OpCreate Op = iota
	// OpGet 查询实体
	OpGet
	// OpUpdate 更新实体
	OpUpdate
	// OpDelete 删除实体
	OpDelete
	// OpAction 执行自定义动作
	OpAction
)

// String 返回操作名称
func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpGet:
		return "get"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpAction:
		return "action"
	default:
		return "unknown"
	}
}

// State Worker 生命周期状态
type State int32

const (
	// StateCreated 已创建，尚未运行
	StateCreated State = iota
	// StateRunning 正在处理消息
	StateRunning
	// StateStopped 邮箱已关闭且排空
	StateStopped
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Outcome 请求处理结果分类，用于监控
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeNotFound    Outcome = "not_found"
	OutcomeEntityError Outcome = "entity_error"
	OutcomeDropped     Outcome = "dropped"
)

// entityName 从实体类型推导出简短名称，例如 *shop.Product -> Product
func entityName[E any]() string {
	var zero E
	name := fmt.Sprintf("%T", zero)
	name = strings.TrimLeft(name, "*[]")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "<nil>" {
		return "entity"
	}
	return name
}
