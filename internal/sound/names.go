package sound

// 客户端播放的提示音
const (
	Turn     = "turn"     // 轮到自己
	GameOver = "gameover" // 对局结束
	Error    = "error"    // 输入被拒绝
)

// 没有音频文件时使用的提示音频率（Hz）
var tones = map[string]float64{
	Turn:     880,
	GameOver: 523.25,
	Error:    220,
}
