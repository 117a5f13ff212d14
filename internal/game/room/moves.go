package room

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/protocol"
	"github.com/palemoky/citychain/internal/types"
)

const (
	exitCommand = "exit"
	banCommand  = "ban"
	banPrefix   = banCommand + " "
)

// AcceptMove 处理房间内的一行输入：exit、ban <name> 或城市名
func (r *Room) AcceptMove(client types.ClientInterface, text string) (MoveResult, error) {
	text = strings.TrimSpace(text)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateFinished {
		return MoveRejected, apperrors.ErrRoomFinished
	}
	idx := r.indexOfClient(client)
	if idx < 0 {
		return MoveRejected, apperrors.ErrNotInRoom
	}

	if strings.EqualFold(text, exitCommand) {
		client.SendMessage(protocol.NewText("👋 You left room %s", r.name))
		r.removeLocked(client, "left")
		client.Close()
		return MoveExited, nil
	}

	if r.state != StateInProgress || idx != r.turn {
		return MoveRejected, apperrors.ErrNotYourTurn
	}

	p := r.players[idx]
	if target, ok := parseBan(text); ok {
		return r.ban(p, target)
	}
	return r.guess(p, text)
}

// parseBan 识别 ban 命令；不带目标的 "ban" 返回空目标
func parseBan(text string) (string, bool) {
	if strings.EqualFold(text, banCommand) {
		return "", true
	}
	if len(text) < len(banPrefix) || !strings.EqualFold(text[:len(banPrefix)], banPrefix) {
		return "", false
	}
	return strings.TrimSpace(text[len(banPrefix):]), true
}

// ban 封禁玩家；不推进回合，不重置计时
func (r *Room) ban(p *Player, target string) (MoveResult, error) {
	if p.Name != r.admin {
		return MoveRejected, apperrors.ErrNotAuthorized
	}
	if target == "" || target == p.Name {
		return MoveRejected, apperrors.ErrInvalidCommand
	}
	if _, ok := r.banned[target]; ok {
		return MoveRejected, apperrors.ErrAlreadyBanned
	}

	r.banned[target] = struct{}{}
	r.broadcast(protocol.NewText("🚫 Player %s was banned by %s", target, p.Name))
	log.Info().Str("room", r.name).Str("admin", p.Name).Str("target", target).Msg("🚫 player banned")

	if i := r.indexOfName(target); i >= 0 {
		victim := r.players[i].Client
		victim.SendMessage(protocol.NewText("🚫 You were banned from room %s", r.name))
		r.removeLocked(victim, "was removed from")
		victim.Close()
	}
	return MoveBanned, nil
}

// guess 校验并接受一个城市
func (r *Room) guess(p *Player, text string) (MoveResult, error) {
	if text == "" {
		return MoveRejected, apperrors.ErrInvalidCommand
	}

	city := strings.ToLower(text)
	if _, used := r.cities[city]; used {
		return MoveRejected, apperrors.ErrAlreadyUsed
	}
	if !chains(r.lastCity, city) {
		return MoveRejected, apperrors.ErrChainMismatch
	}

	r.cities[city] = struct{}{}
	r.lastCity = city
	r.scores[p.Name]++

	r.broadcast(protocol.NewText("🏙️ %s named %s (score: %d)", p.Name, text, r.scores[p.Name]))
	log.Debug().Str("room", r.name).Str("player", p.Name).Str("city", city).Msg("city accepted")

	r.resetDeadline()
	r.turn = (r.turn + 1) % len(r.players)
	r.announceTurn()
	r.cond.Broadcast()
	return MoveAccepted, nil
}

// chains reports whether next may follow prev: its first rune must equal
// prev's last rune. Any city may open the game.
func chains(prev, next string) bool {
	if prev == "" {
		return true
	}
	first, _ := utf8.DecodeRuneInString(next)
	last, _ := utf8.DecodeLastRuneInString(prev)
	return first == last
}

func lastLetter(city string) string {
	last, _ := utf8.DecodeLastRuneInString(city)
	return string(last)
}
