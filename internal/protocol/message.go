package protocol

import (
	"fmt"
	"strings"
)

// Kind 消息种类
type Kind int

const (
	KindText  Kind = iota // 单行文本
	KindList              // 有序文本列表（房间列表、排名等）
	KindError             // 错误提示
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseKind maps a wire name back to a Kind. Unknown names decode as text.
func ParseKind(s string) Kind {
	switch s {
	case "list":
		return KindList
	case "error":
		return KindError
	default:
		return KindText
	}
}

// Message 基础消息结构：要么是一行文本，要么是一组有序文本
type Message struct {
	Kind  Kind
	Text  string
	Lines []string
	Code  int
}

// 会话提示前缀，客户端据此识别回合与结束事件
const (
	PromptName     = "👋 Enter your name:"
	PromptYourMove = "✍️ Your move"
	PrefixGameOver = "🏁 Game over"
)

// NewText 创建格式化文本消息
func NewText(format string, args ...any) *Message {
	return Text(fmt.Sprintf(format, args...))
}

// Text 创建文本消息，text 原样发送
func Text(text string) *Message {
	return &Message{Kind: KindText, Text: text}
}

// NewList 创建列表消息
func NewList(lines []string) *Message {
	cp := make([]string, len(lines))
	copy(cp, lines)
	return &Message{Kind: KindList, Lines: cp}
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *Message {
	text, ok := ErrorMessages[code]
	if !ok {
		text = ErrorMessages[ErrCodeUnknown]
	}
	return &Message{Kind: KindError, Code: code, Text: text}
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *Message {
	return &Message{Kind: KindError, Code: code, Text: text}
}

// IsList reports whether the message carries a list of lines.
func (m *Message) IsList() bool {
	return m.Kind == KindList
}

// String renders the message for a terminal.
func (m *Message) String() string {
	switch m.Kind {
	case KindList:
		return strings.Join(m.Lines, "\n")
	case KindError:
		return "⚠️ " + m.Text
	default:
		return m.Text
	}
}
