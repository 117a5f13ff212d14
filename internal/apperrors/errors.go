package apperrors

import (
	"errors"

	"github.com/palemoky/citychain/internal/protocol"
)

// GameError 游戏错误（目录、房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newGameError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrNameConflict   = newGameError(protocol.ErrCodeNameConflict)
	ErrRoomNotFound   = newGameError(protocol.ErrCodeRoomNotFound)
	ErrBanned         = newGameError(protocol.ErrCodeBanned)
	ErrNameTaken      = newGameError(protocol.ErrCodeNameTaken)
	ErrNotInRoom      = newGameError(protocol.ErrCodeNotInRoom)
	ErrRoomFinished   = newGameError(protocol.ErrCodeRoomFinished)
	ErrNotYourTurn    = newGameError(protocol.ErrCodeNotYourTurn)
	ErrAlreadyUsed    = newGameError(protocol.ErrCodeAlreadyUsed)
	ErrChainMismatch  = newGameError(protocol.ErrCodeChainMismatch)
	ErrNotAuthorized  = newGameError(protocol.ErrCodeNotAuthorized)
	ErrAlreadyBanned  = newGameError(protocol.ErrCodeAlreadyBanned)
	ErrInvalidCommand = newGameError(protocol.ErrCodeInvalidCommand)
	ErrMaintenance    = newGameError(protocol.ErrCodeServerMaintenance)
	ErrUnavailable    = newGameError(protocol.ErrCodeUnavailable)
)

// ErrConnClosed 连接已断开（传输层读写失败）
var ErrConnClosed = errors.New("connection closed")

// ToMessage converts an error into the error message sent to a client.
func ToMessage(err error) *protocol.Message {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return protocol.NewErrorMessageWithText(gameErr.Code, gameErr.Message)
	}
	return protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error())
}
