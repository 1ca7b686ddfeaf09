// FILE: tlog/message.go
package tlog

import (
	"path"
	"strings"
)

// MessageID indexes a registered message
type MessageID int

// MessageInfo holds the static metadata and live throttle state of one message
type MessageInfo struct {
	ID               MessageID
	FileLevel        Level   // Least severe level still written
	EnableLevel      Level   // Level the message was registered with
	Name             string  // Logger name shown in the line, also the selector key
	ThrottleInterval float64 // Seconds between real emissions, 0 disables
	Suppressed       uint64  // Calls elided since the last emission
}

// MessageRegistry is a dense, append-only table of messages with fixed capacity
type MessageRegistry struct {
	infos []MessageInfo
}

// NewMessageRegistry creates an empty registry holding at most capacity entries.
func NewMessageRegistry(capacity int) *MessageRegistry {
	if capacity <= 0 {
		capacity = DefaultMaxMessages
	}
	return &MessageRegistry{infos: make([]MessageInfo, 0, capacity)}
}

// Register appends a new message and returns its id.
func (r *MessageRegistry) Register(fileLevel, enableLevel Level, name string, throttle float64) (MessageID, error) {
	if len(r.infos) == cap(r.infos) {
		return -1, ErrCapacityExceeded
	}
	if throttle < 0 {
		throttle = 0
	}
	id := MessageID(len(r.infos))
	r.infos = append(r.infos, MessageInfo{
		ID:               id,
		FileLevel:        fileLevel,
		EnableLevel:      enableLevel,
		Name:             name,
		ThrottleInterval: throttle,
	})
	return id, nil
}

// Get returns the entry for id. The pointer stays valid for the registry lifetime.
func (r *MessageRegistry) Get(id MessageID) (*MessageInfo, error) {
	if id < 0 || int(id) >= len(r.infos) {
		return nil, ErrUnknownMessageID
	}
	return &r.infos[id], nil
}

// SetLevel overwrites the file level of every matching entry and returns the count changed.
func (r *MessageRegistry) SetLevel(selector string, level Level) int {
	return r.update(selector, func(mi *MessageInfo) { mi.FileLevel = level })
}

// SetThrottle overwrites the throttle interval of every matching entry.
func (r *MessageRegistry) SetThrottle(selector string, interval float64) int {
	if interval < 0 {
		interval = 0
	}
	return r.update(selector, func(mi *MessageInfo) { mi.ThrottleInterval = interval })
}

// ResetLevels restores the registration level of every matching entry.
func (r *MessageRegistry) ResetLevels(selector string) int {
	return r.update(selector, func(mi *MessageInfo) { mi.FileLevel = mi.EnableLevel })
}

func (r *MessageRegistry) update(selector string, fn func(*MessageInfo)) int {
	n := 0
	for i := range r.infos {
		if matchSelector(selector, r.infos[i].Name) {
			fn(&r.infos[i])
			n++
		}
	}
	return n
}

// Traverse calls fn for every entry in id order, stopping at the first error.
func (r *MessageRegistry) Traverse(fn func(*MessageInfo) error) error {
	for i := range r.infos {
		if err := fn(&r.infos[i]); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered messages.
func (r *MessageRegistry) Len() int { return len(r.infos) }

// Cap returns the fixed capacity.
func (r *MessageRegistry) Cap() int { return cap(r.infos) }

// matchSelector matches "*" or "" against everything, glob patterns via path.Match, otherwise exact names
func matchSelector(selector, name string) bool {
	if selector == "" || selector == "*" {
		return true
	}
	if strings.ContainsAny(selector, "*?[") {
		ok, err := path.Match(selector, name)
		return err == nil && ok
	}
	return selector == name
}
