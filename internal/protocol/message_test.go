package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Command
	}{
		{"create r1", Command{Name: "create", Arg: "r1"}},
		{"  join   new york  ", Command{Name: "join", Arg: "new york"}},
		{"list", Command{Name: "list"}},
		{"", Command{}},
		{"Create r1", Command{Name: "Create", Arg: "r1"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCommand(tt.line), tt.line)
	}
}

func TestMessage_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello Bob", NewText("hello %s", "Bob").String())
	assert.Equal(t, "100%", Text("100%").String())
	assert.Equal(t, "a\nb", NewList([]string{"a", "b"}).String())
	assert.Equal(t, "⚠️ "+ErrorMessages[ErrCodeAlreadyUsed], NewErrorMessage(ErrCodeAlreadyUsed).String())
}

func TestNewErrorMessage_UnknownCode(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(424242)
	assert.Equal(t, KindError, msg.Kind)
	assert.Equal(t, ErrorMessages[ErrCodeUnknown], msg.Text)
}

func TestNewList_Copies(t *testing.T) {
	t.Parallel()

	lines := []string{"r1"}
	msg := NewList(lines)
	lines[0] = "changed"
	assert.Equal(t, []string{"r1"}, msg.Lines)
}
