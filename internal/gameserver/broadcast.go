package gameserver

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/game/room"
	"github.com/cory-johannsen/arcade/internal/protocol"
)

// Broadcast helpers run inside the registry's exclusive section.

// broadcastFrame pushes the same frame to every member of rm.
func broadcastFrame(rm *room.Room, frame []byte, logger *zap.Logger) {
	if frame == nil {
		return
	}
	logPruned(rm, rm.Broadcast(func(room.Member) []byte { return frame }), logger)
}

// broadcastRoomEvent tells rm's members that player performed action.
func broadcastRoomEvent(rm *room.Room, action, player string, logger *zap.Logger) {
	frame, err := protocol.Encode(protocol.TagGameRoom, roomEvent(rm, action, player))
	if err != nil {
		logger.Error("encoding room event", zap.String("game_id", rm.ID), zap.Error(err))
		return
	}
	broadcastFrame(rm, frame, logger)
}

func roomEvent(rm *room.Room, action, player string) protocol.GameRoomEvent {
	return protocol.GameRoomEvent{
		Action:     action,
		PlayerName: player,
		GameID:     rm.ID,
		Game:       rm.Kind,
		Users:      rm.Users(),
	}
}

// broadcastState sends rm's game snapshot to every member, rendered per
// recipient when the game hides information.
func broadcastState(rm *room.Room, logger *zap.Logger) {
	if !rm.Engine.PerViewer() {
		broadcastFrame(rm, stateFrame(rm, "", logger), logger)
		return
	}
	pruned := rm.Broadcast(func(m room.Member) []byte {
		return stateFrame(rm, m.Name, logger)
	})
	logPruned(rm, pruned, logger)
}

// stateFrame renders rm's snapshot for viewer.
//
// Postcondition: Returns nil if the snapshot cannot be encoded.
func stateFrame(rm *room.Room, viewer string, logger *zap.Logger) []byte {
	frame, err := protocol.Encode(protocol.TagFor(rm.Kind), protocol.StatePayload{
		GameID: rm.ID,
		Game:   rm.Kind,
		State:  rm.Engine.Snapshot(viewer),
	})
	if err != nil {
		logger.Error("encoding snapshot", zap.String("game_id", rm.ID), zap.Error(err))
		return nil
	}
	return frame
}

func logPruned(rm *room.Room, pruned []room.Member, logger *zap.Logger) {
	for _, m := range pruned {
		logger.Warn("pruned closed connection from room",
			zap.String("game_id", rm.ID),
			zap.String("player_name", m.Name),
			zap.String("conn_id", m.Outbox.ID()),
		)
	}
}
