package server

import (
	"math/rand/v2"
)

// 昵称词库
var (
	adjectives = []string{
		"Brave", "Clever", "Happy", "Mystic", "Swift",
		"Gentle", "Lucky", "Mighty", "Calm", "Lively",
		"Witty", "Bold", "Quiet", "Sunny", "Steady",
		"Shiny", "Curious", "Jolly", "Sleepy", "Cool",
	}

	nouns = []string{
		"Traveler", "Nomad", "Pilot", "Sailor", "Ranger",
		"Explorer", "Wanderer", "Courier", "Mapper", "Pioneer",
		"Voyager", "Drifter", "Scout", "Rover", "Pilgrim",
		"Tourist", "Hiker", "Guide", "Captain", "Navigator",
	}
)

// GenerateNickname 生成随机昵称，玩家未输入名字时使用
func GenerateNickname() string {
	adj := adjectives[rand.IntN(len(adjectives))]
	noun := nouns[rand.IntN(len(nouns))]
	return adj + noun
}
