package room

import (
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/protocol"
	"github.com/palemoky/citychain/internal/types"
)

// AddPlayer 玩家加入房间，第二名玩家加入时开局
func (r *Room) AddPlayer(client types.ClientInterface) error {
	name := client.GetName()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateFinished {
		return apperrors.ErrRoomFinished
	}
	if _, ok := r.banned[name]; ok {
		return apperrors.ErrBanned
	}
	if r.indexOfName(name) >= 0 {
		return apperrors.ErrNameTaken
	}

	r.players = append(r.players, &Player{Client: client, Name: name})
	r.trackScore(name)
	client.SetRoom(r.name)

	r.broadcastExcept(client, protocol.NewText("👤 %s joined room %s", name, r.name))
	log.Info().Str("room", r.name).Str("player", name).Int("players", len(r.players)).Msg("👤 player joined")

	if r.state == StateWaiting && len(r.players) >= minPlayers {
		r.start()
	}
	r.cond.Broadcast()
	return nil
}

// RemovePlayer 玩家离开房间，返回是否确实移除
func (r *Room) RemovePlayer(client types.ClientInterface) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(client, "left")
}

func (r *Room) removeLocked(client types.ClientInterface, verb string) bool {
	idx := r.indexOfClient(client)
	if idx < 0 {
		return false
	}

	p := r.players[idx]
	hadTurn := r.state == StateInProgress && idx == r.turn

	r.players = slices.Delete(r.players, idx, idx+1)
	client.SetRoom("")

	if idx < r.turn {
		r.turn--
	}
	if len(r.players) == 0 {
		r.turn = 0
		r.idleSince = r.timer.Clock().Now()
	} else {
		r.turn %= len(r.players)
	}

	r.broadcast(protocol.NewText("👋 %s %s room %s", p.Name, verb, r.name))
	log.Info().Str("room", r.name).Str("player", p.Name).Int("players", len(r.players)).Msg("👋 player left")

	switch {
	case r.state == StateInProgress && len(r.players) < minPlayers:
		r.pause()
	case hadTurn:
		r.resetDeadline()
		r.announceTurn()
	}

	r.cond.Broadcast()
	return true
}

// WaitForStart 阻塞直到对局开始
func (r *Room) WaitForStart(client types.ClientInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notified := false
	for {
		switch {
		case r.state == StateFinished:
			return apperrors.ErrRoomFinished
		case r.indexOfClient(client) < 0:
			return apperrors.ErrNotInRoom
		case r.state == StateInProgress:
			return nil
		}
		if !notified {
			client.SendMessage(protocol.NewText("⏳ Waiting for another player to join %s...", r.name))
			notified = true
		}
		r.cond.Wait()
	}
}

// AwaitTurn 阻塞直到轮到 client 出城市
func (r *Room) AwaitTurn(client types.ClientInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if r.state == StateFinished {
			return apperrors.ErrRoomFinished
		}
		idx := r.indexOfClient(client)
		if idx < 0 {
			return apperrors.ErrNotInRoom
		}
		if r.state == StateInProgress && idx == r.turn {
			return nil
		}
		r.cond.Wait()
	}
}

// IsTurn reports whether client holds the turn in a running game
func (r *Room) IsTurn(client types.ClientInterface) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexOfClient(client)
	return r.state == StateInProgress && idx >= 0 && idx == r.turn
}

// TurnPrompt returns the prompt shown to the turn holder.
func (r *Room) TurnPrompt() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastCity == "" {
		return protocol.PromptYourMove + ": name any city"
	}
	return protocol.PromptYourMove + ": a city starting with " + lastLetter(r.lastCity)
}
