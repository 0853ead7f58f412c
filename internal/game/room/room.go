// Package room holds game rooms, the registry that owns them, and the
// broadcast fan-out to room members.
package room

import (
	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/session"
)

// Member is one connection's presence in a room under a display name.
// Several connections may share a name and therefore a seat.
type Member struct {
	Name   string
	Outbox *session.Outbox
}

// ChatMessage is one line of a room's chat transcript.
type ChatMessage struct {
	PlayerName string `json:"player_name"`
	Message    string `json:"chat_message"`
	Time       string `json:"time"`
}

// Room is a named game instance. A Room is only touched inside the
// Registry's exclusive section.
//
// Invariant: a room reachable from the Registry has at least one member.
type Room struct {
	ID     string
	Kind   engine.Kind
	Engine *engine.Engine

	members   []Member
	chat      []ChatMessage
	chatLimit int
}

func newRoom(id string, kind engine.Kind, eng *engine.Engine, chatLimit int) *Room {
	return &Room{ID: id, Kind: kind, Engine: eng, chatLimit: chatLimit}
}

// Users returns the distinct display names of the members in join order.
func (r *Room) Users() []string {
	seen := make(map[string]bool, len(r.members))
	out := make([]string, 0, len(r.members))
	for _, m := range r.members {
		if !seen[m.Name] {
			seen[m.Name] = true
			out = append(out, m.Name)
		}
	}
	return out
}

// Members returns a copy of the member list.
func (r *Room) Members() []Member {
	return append([]Member(nil), r.members...)
}

// Empty reports whether no connection remains in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}

// NameOf returns the display name ob joined under.
func (r *Room) NameOf(ob *session.Outbox) (string, bool) {
	for _, m := range r.members {
		if m.Outbox == ob {
			return m.Name, true
		}
	}
	return "", false
}

// Join adds ob under name and seats name in the game. Joining again on the
// same connection is a no-op that reports the original name. The same name
// on another connection shares the existing seat.
//
// Postcondition: On error the room is unchanged. joined is false when ob was already a member.
func (r *Room) Join(name string, ob *session.Outbox) (member string, joined bool, err error) {
	if existing, ok := r.NameOf(ob); ok {
		return existing, false, nil
	}
	if name == "" {
		return "", false, gameerr.New(gameerr.MissingRequiredField, "player_name is required")
	}
	if _, err := r.Engine.AssignSeat(name); err != nil {
		return "", false, err
	}
	r.members = append(r.members, Member{Name: name, Outbox: ob})
	return name, true, nil
}

// Leave removes ob's membership.
//
// Postcondition: Returns the name ob had joined under, or ok=false if it was not a member.
func (r *Room) Leave(ob *session.Outbox) (name string, ok bool) {
	for i, m := range r.members {
		if m.Outbox == ob {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return m.Name, true
		}
	}
	return "", false
}

// AddChat appends msg to the transcript, dropping the oldest lines beyond the limit.
func (r *Room) AddChat(msg ChatMessage) {
	if r.chatLimit <= 0 {
		return
	}
	r.chat = append(r.chat, msg)
	if over := len(r.chat) - r.chatLimit; over > 0 {
		r.chat = append([]ChatMessage(nil), r.chat[over:]...)
	}
}

// Chat returns a copy of the transcript, oldest first.
func (r *Room) Chat() []ChatMessage {
	return append([]ChatMessage{}, r.chat...)
}

// Broadcast pushes render(m) to every member in join order. A nil frame
// skips that member. Members whose push fails are removed and returned.
func (r *Room) Broadcast(render func(m Member) []byte) []Member {
	var pruned []Member
	kept := r.members[:0]
	for _, m := range r.members {
		frame := render(m)
		if frame == nil {
			kept = append(kept, m)
			continue
		}
		if err := m.Outbox.Push(frame); err != nil {
			pruned = append(pruned, m)
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(r.members); i++ {
		r.members[i] = Member{}
	}
	r.members = kept
	return pruned
}

func (r *Room) info() Info {
	return Info{ID: r.ID, Game: r.Kind, Users: r.Users(), Seats: r.Engine.Players()}
}
