package room

// RoomState 房间状态
type RoomState int

const (
	StateWaiting    RoomState = iota // 等待第二名玩家（或人数不足暂停）
	StateInProgress                  // 对局中
	StateFinished                    // 已结束，不可逆
)

func (s RoomState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateInProgress:
		return "in progress"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MoveResult 一次房间内输入的处理结果
type MoveResult int

const (
	MoveRejected MoveResult = iota
	MoveAccepted
	MoveBanned
	MoveExited
)

func (m MoveResult) String() string {
	switch m {
	case MoveAccepted:
		return "accepted"
	case MoveBanned:
		return "banned"
	case MoveExited:
		return "exited"
	default:
		return "rejected"
	}
}
