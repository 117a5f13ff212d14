package room

import (
	"sync"
	"time"

	"github.com/palemoky/citychain/internal/game/deadline"
	"github.com/palemoky/citychain/internal/types"
)

// 开局所需最少人数
const minPlayers = 2

// Player 房间中的玩家
type Player struct {
	Client types.ClientInterface
	Name   string
}

// Room 游戏房间。所有字段由 mu 保护，cond 用于等待开局与轮到自己
type Room struct {
	name      string
	admin     string
	createdAt time.Time

	players    []*Player           // 加入顺序即出场顺序
	cities     map[string]struct{} // 已用城市（小写）
	lastCity   string
	banned     map[string]struct{}
	scores     map[string]int
	scoreOrder []string // 首次计分顺序，用于平局判定
	turn       int
	state      RoomState
	started    bool // 至少开局过一次
	deadline   *deadline.Handle
	idleSince  time.Time

	turnTimeout time.Duration
	timer       *deadline.Timer
	recorders   []types.ResultRecorder
	directory   *Directory

	mu   sync.Mutex
	cond *sync.Cond
}

func newRoom(name, admin string, d *Directory) *Room {
	now := d.timer.Clock().Now()
	r := &Room{
		name:        name,
		admin:       admin,
		createdAt:   now,
		cities:      make(map[string]struct{}),
		banned:      make(map[string]struct{}),
		scores:      make(map[string]int),
		state:       StateWaiting,
		idleSince:   now,
		turnTimeout: d.opts.TurnTimeout,
		timer:       d.timer,
		recorders:   d.opts.Recorders,
		directory:   d,
	}
	r.cond = sync.NewCond(&r.mu)
	r.trackScore(admin)
	return r
}

// Name returns the room name
func (r *Room) Name() string {
	return r.name
}

// Admin returns the name of the room creator
func (r *Room) Admin() string {
	return r.admin
}

// State returns the lifecycle state
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// PlayerCount returns the number of connected members
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// IsMember reports whether client is currently in the room
func (r *Room) IsMember(client types.ClientInterface) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOfClient(client) >= 0
}

func (r *Room) trackScore(name string) {
	if _, ok := r.scores[name]; ok {
		return
	}
	r.scores[name] = 0
	r.scoreOrder = append(r.scoreOrder, name)
}

func (r *Room) indexOfClient(client types.ClientInterface) int {
	for i, p := range r.players {
		if p.Client == client {
			return i
		}
	}
	return -1
}

func (r *Room) indexOfName(name string) int {
	for i, p := range r.players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// currentPlayer returns the turn holder, nil when the room is empty.
func (r *Room) currentPlayer() *Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[r.turn]
}
