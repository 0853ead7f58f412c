package room

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arcade/internal/game/engine"
	"github.com/cory-johannsen/arcade/internal/game/gameerr"
	"github.com/cory-johannsen/arcade/internal/game/session"
)

// Hook observes room creation or removal. Hooks run inside the registry's
// exclusive section and must not call back into the Registry.
type Hook func(id string, kind engine.Kind)

// Info is a read-only summary of a room.
type Info struct {
	ID    string      `json:"game_id"`
	Game  engine.Kind `json:"game"`
	Users []string    `json:"users"`
	Seats []string    `json:"seats"`
}

// Registry owns every room. One mutex serializes all room lookups,
// mutations, and broadcasts.
//
// Invariant: every room in rooms has at least one member once the section
// that created it ends.
type Registry struct {
	mu        sync.Mutex
	rooms     map[string]*Room
	opts      engine.Options
	chatLimit int
	onCreate  []Hook
	onRemove  []Hook
	logger    *zap.Logger
}

// NewRegistry creates an empty Registry. New rooms build their engines from
// opts and keep at most chatLimit chat lines.
//
// Precondition: logger must be non-nil.
func NewRegistry(opts engine.Options, chatLimit int, logger *zap.Logger) *Registry {
	return &Registry{
		rooms:     make(map[string]*Room),
		opts:      opts,
		chatLimit: chatLimit,
		logger:    logger,
	}
}

// OnCreate registers h to run whenever a room is created.
func (r *Registry) OnCreate(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onCreate = append(r.onCreate, h)
}

// OnRemove registers h to run whenever a room is removed.
func (r *Registry) OnRemove(h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRemove = append(r.onRemove, h)
}

// getOrCreateLocked returns room id, creating it as kind when absent.
// An empty kind matches any existing room but cannot create one.
func (r *Registry) getOrCreateLocked(id string, kind engine.Kind) (*Room, bool, error) {
	if id == "" {
		return nil, false, gameerr.New(gameerr.MissingRequiredField, "game_id is required")
	}
	if rm, ok := r.rooms[id]; ok {
		if kind != "" && rm.Kind != kind {
			return nil, false, gameerr.New(gameerr.WrongGameTypeForRoom, "room %s hosts %s, not %s", id, rm.Kind, kind)
		}
		return rm, false, nil
	}
	if kind == "" {
		return nil, false, gameerr.New(gameerr.MissingRequiredField, "game is required to create room %s", id)
	}
	eng, err := engine.New(kind, r.opts)
	if err != nil {
		return nil, false, err
	}
	rm := newRoom(id, kind, eng, r.chatLimit)
	r.rooms[id] = rm
	for _, h := range r.onCreate {
		h(id, kind)
	}
	r.logger.Info("room created", zap.String("game_id", id), zap.String("game", string(kind)))
	return rm, true, nil
}

func (r *Registry) removeLocked(id string) {
	rm, ok := r.rooms[id]
	if !ok {
		return
	}
	delete(r.rooms, id)
	for _, h := range r.onRemove {
		h(id, rm.Kind)
	}
	r.logger.Info("room removed", zap.String("game_id", id), zap.String("game", string(rm.Kind)))
}

// GetOrCreate returns room id, creating it as kind when absent. Concurrent
// first calls for the same id create exactly one room.
//
// Postcondition: created is true for exactly one caller per room lifetime.
func (r *Registry) GetOrCreate(id string, kind engine.Kind) (rm *Room, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(id, kind)
}

// WithRoom runs fn on room id inside the exclusive section. The room is
// removed before the section ends if fn left it without members.
//
// Postcondition: Returns RoomNotFound if id does not exist, otherwise fn's error.
func (r *Registry) WithRoom(id string, fn func(rm *Room) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return gameerr.New(gameerr.RoomNotFound, "room %s does not exist", id)
	}
	err := fn(rm)
	if rm.Empty() {
		r.removeLocked(id)
	}
	return err
}

// WithRoomOrCreate looks up room id, creates it as kind if absent, and runs
// fn, all in one section. A room created here is discarded if fn fails.
func (r *Registry) WithRoomOrCreate(id string, kind engine.Kind, fn func(rm *Room, created bool) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, created, err := r.getOrCreateLocked(id, kind)
	if err != nil {
		return err
	}
	err = fn(rm, created)
	if rm.Empty() || (err != nil && created) {
		r.removeLocked(id)
	}
	return err
}

// RemoveIfEmpty removes room id if it has no members.
//
// Postcondition: Returns true if the room was removed.
func (r *Registry) RemoveIfEmpty(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok || !rm.Empty() {
		return false
	}
	r.removeLocked(id)
	return true
}

// Detach removes ob from every room it belongs to. For each room that still
// has members, onLeave runs inside the section with the name ob had used.
// Rooms left empty are removed. Calling Detach again is a no-op.
//
// Postcondition: Returns the IDs of the rooms ob left, sorted.
func (r *Registry) Detach(ob *session.Outbox, onLeave func(rm *Room, name string)) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var left []string
	for id, rm := range r.rooms {
		name, ok := rm.Leave(ob)
		if !ok {
			continue
		}
		left = append(left, id)
		if !rm.Empty() && onLeave != nil {
			onLeave(rm, name)
		}
		if rm.Empty() {
			r.removeLocked(id)
		}
	}
	sort.Strings(left)
	return left
}

// RoomsOf returns the IDs of the rooms ob is a member of, sorted.
func (r *Registry) RoomsOf(ob *session.Outbox) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, rm := range r.rooms {
		if _, ok := rm.NameOf(ob); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Each runs fn on every room of kind inside the section. An empty kind
// matches all rooms.
func (r *Registry) Each(kind engine.Kind, fn func(rm *Room)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rm := range r.rooms {
		if kind != "" && rm.Kind != kind {
			continue
		}
		fn(rm)
		if rm.Empty() {
			r.removeLocked(id)
		}
	}
}

// Len returns the number of rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// List summarizes every room, sorted by ID.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Info, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Info summarizes room id.
func (r *Registry) Info(id string) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return Info{}, false
	}
	return rm.info(), true
}
