package room

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/protocol"
	"github.com/palemoky/citychain/internal/types"
)

// 对局结果写入超时
const recordTimeout = 5 * time.Second

// start 开局（或人数恢复后继续），调用方需持有 r.mu
func (r *Room) start() {
	resumed := r.started
	r.started = true
	r.state = StateInProgress
	if r.turn >= len(r.players) {
		r.turn = 0
	}

	if resumed {
		r.broadcast(protocol.NewText("▶️ Game resumed in room %s", r.name))
	} else {
		r.broadcast(protocol.NewText("🎮 Game started in room %s! %s goes first", r.name, r.currentPlayer().Name))
	}
	log.Info().Str("room", r.name).Bool("resumed", resumed).Int("players", len(r.players)).Msg("🎮 game started")

	r.resetDeadline()
	r.announceTurn()
}

// pause 人数不足时暂停，保留已用城市和得分
func (r *Room) pause() {
	r.state = StateWaiting
	r.stopDeadline()
	r.broadcast(protocol.NewText("⏸️ Not enough players to continue, waiting for someone to join %s", r.name))
	log.Info().Str("room", r.name).Msg("⏸️ game paused")
}

// resetDeadline 取消旧计时并为当前回合重新计时
func (r *Room) resetDeadline() {
	r.timer.Cancel(r.deadline)
	r.deadline = r.timer.Schedule(r.turnTimeout, r.timeout)
}

func (r *Room) stopDeadline() {
	r.timer.Cancel(r.deadline)
	r.deadline = nil
}

// timeout 回合超时回调。取消与触发可能并发，只处理当前句柄
func (r *Room) timeout(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateInProgress || r.deadline.ID() != id {
		log.Debug().Str("room", r.name).Uint64("deadline", id).Msg("stale deadline ignored")
		return
	}
	r.deadline = nil

	name := r.currentPlayer().Name
	r.broadcast(protocol.NewText("⏰ Player %s failed to respond in time!", name))
	r.gameOver(fmt.Sprintf("%s ran out of time", name))
}

// Finish 结束对局（服务器关闭、空房间回收），返回是否由本次调用结束
func (r *Room) Finish(reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gameOver(reason)
}

// finishIfAbandoned 结束空闲超过 idle 的空房间
func (r *Room) finishIfAbandoned(now time.Time, idle time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateWaiting || len(r.players) > 0 || now.Sub(r.idleSince) < idle {
		return false
	}
	return r.gameOver("room abandoned")
}

// gameOver 结束对局，只有第一次调用生效。调用方需持有 r.mu
func (r *Room) gameOver(reason string) bool {
	if r.state == StateFinished {
		return false
	}
	r.state = StateFinished
	r.stopDeadline()

	standings := r.standings()
	played := r.started
	if played {
		winner := standings[0]
		r.broadcast(protocol.NewText("%s: %s. Winner: %s with %d cities!", protocol.PrefixGameOver, reason, winner.Name, winner.Score))
		lines := make([]string, len(standings))
		for i, s := range standings {
			lines[i] = fmt.Sprintf("%d. %s: %d", i+1, s.Name, s.Score)
		}
		r.broadcast(protocol.NewList(lines))
	} else {
		r.broadcast(protocol.NewText("%s: %s. The game never started.", protocol.PrefixGameOver, reason))
	}

	for _, p := range r.players {
		p.Client.SetRoom("")
		p.Client.Close()
	}
	r.players = nil
	r.turn = 0
	r.cond.Broadcast()

	if r.directory != nil {
		r.directory.remove(r.name)
	}

	log.Info().Str("room", r.name).Str("reason", reason).Int("cities", len(r.cities)).Msg("🏁 game over")

	if played {
		r.record(types.GameResult{
			Room:       r.name,
			Winner:     standings[0].Name,
			Reason:     reason,
			Standings:  standings,
			Cities:     len(r.cities),
			FinishedAt: r.timer.Clock().Now(),
		})
	}
	return true
}

// standings 按得分从高到低排序，同分按首次计分顺序
func (r *Room) standings() []types.Standing {
	out := make([]types.Standing, len(r.scoreOrder))
	for i, name := range r.scoreOrder {
		out[i] = types.Standing{Name: name, Score: r.scores[name]}
	}
	slices.SortStableFunc(out, func(a, b types.Standing) int {
		return b.Score - a.Score
	})
	return out
}

// record 异步写入对局结果，不阻塞房间锁
func (r *Room) record(result types.GameResult) {
	for _, rec := range r.recorders {
		if r.directory != nil && !r.directory.beginRecord() {
			log.Warn().Str("room", result.Room).Msg("directory draining, game result dropped")
			return
		}
		go func(rec types.ResultRecorder) {
			if r.directory != nil {
				defer r.directory.recording.Done()
			}
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := rec.RecordGameResult(ctx, result); err != nil {
				log.Error().Err(err).Str("room", result.Room).Msg("failed to record game result")
			}
		}(rec)
	}
}
