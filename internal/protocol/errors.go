package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidCommand    = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeNameConflict      = 2001 // 房间名已存在
	ErrCodeRoomNotFound      = 2002
	ErrCodeBanned            = 2003
	ErrCodeNameTaken         = 2004 // 房间内已有同名玩家
	ErrCodeNotInRoom         = 2005
	ErrCodeRoomFinished      = 2006
	ErrCodeNotYourTurn       = 3001
	ErrCodeAlreadyUsed       = 3002
	ErrCodeChainMismatch     = 3003
	ErrCodeNotAuthorized     = 3004
	ErrCodeAlreadyBanned     = 3005
	ErrCodeServerMaintenance = 5003 // 服务器维护中
	ErrCodeUnavailable       = 5004 // 排行榜等可选服务不可用
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "Unknown error",
	ErrCodeInvalidCommand:    "Invalid command. Type 'help' for the list of commands.",
	ErrCodeRateLimit:         "Too many messages, slow down",
	ErrCodeNameConflict:      "A room with this name already exists",
	ErrCodeRoomNotFound:      "Room does not exist",
	ErrCodeBanned:            "You are banned from this room",
	ErrCodeNameTaken:         "A player with this name is already in the room",
	ErrCodeNotInRoom:         "You are not in a room",
	ErrCodeRoomFinished:      "The game in this room is already over",
	ErrCodeNotYourTurn:       "It is not your turn",
	ErrCodeAlreadyUsed:       "This city has already been named!",
	ErrCodeChainMismatch:     "The city must start with the last letter of the previous one!",
	ErrCodeNotAuthorized:     "Only the room admin can ban players!",
	ErrCodeAlreadyBanned:     "This player is already banned",
	ErrCodeServerMaintenance: "Server is under maintenance",
	ErrCodeUnavailable:       "Service unavailable",
}
