package room

import "maps"

// Info 房间快照
type Info struct {
	Name       string
	Admin      string
	State      RoomState
	Players    []string
	Scores     map[string]int
	Banned     []string
	LastCity   string
	TurnPlayer string
	UsedCities int
}

// Snapshot 返回房间当前状态的拷贝
func (r *Room) Snapshot() Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := Info{
		Name:       r.name,
		Admin:      r.admin,
		State:      r.state,
		Players:    make([]string, len(r.players)),
		Scores:     maps.Clone(r.scores),
		LastCity:   r.lastCity,
		UsedCities: len(r.cities),
	}
	for i, p := range r.players {
		info.Players[i] = p.Name
	}
	for name := range r.banned {
		info.Banned = append(info.Banned, name)
	}
	if r.state == StateInProgress {
		info.TurnPlayer = r.currentPlayer().Name
	}
	return info
}
