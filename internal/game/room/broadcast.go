package room

import (
	"github.com/palemoky/citychain/internal/protocol"
	"github.com/palemoky/citychain/internal/types"
)

// broadcast 向所有成员发送消息，调用方需持有 r.mu
func (r *Room) broadcast(msg *protocol.Message) {
	r.broadcastExcept(nil, msg)
}

// broadcastExcept 向除 exclude 外的成员发送消息，调用方需持有 r.mu
func (r *Room) broadcastExcept(exclude types.ClientInterface, msg *protocol.Message) {
	for _, p := range r.players {
		if exclude != nil && p.Client == exclude {
			continue
		}
		p.Client.SendMessage(msg)
	}
}

// announceTurn 通知当前回合玩家
func (r *Room) announceTurn() {
	p := r.currentPlayer()
	if p == nil {
		return
	}
	if r.lastCity == "" {
		r.broadcast(protocol.NewText("➡️ %s's turn: name any city (%s left)", p.Name, r.turnTimeout))
		return
	}
	r.broadcast(protocol.NewText("➡️ %s's turn: a city starting with %q (%s left)", p.Name, lastLetter(r.lastCity), r.turnTimeout))
}
