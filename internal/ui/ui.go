// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/palemoky/citychain/internal/ui/model"
)

// NewOnlineModel creates the terminal client model for conn. player may be nil.
func NewOnlineModel(conn model.Conn, player model.SoundPlayer) *model.OnlineModel {
	return model.NewOnlineModel(conn, player)
}
