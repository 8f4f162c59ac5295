package request

import (
	"fmt"
	"sync"

	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// UpdateAction is one named change inside an update command. Payload holds
// the action's fields and is flattened next to "action" on the wire:
//
//	{"action":"setKey","key":"summer"}
type UpdateAction struct {
	Action  string
	Payload any
}

// NewAction returns an action named name carrying payload.
func NewAction(name string, payload any) UpdateAction {
	return UpdateAction{Action: name, Payload: payload}
}

// MarshalJSON writes the payload fields with the action name added.
func (a UpdateAction) MarshalJSON() ([]byte, error) {
	fields := map[string]codec.RawMessage{}
	if a.Payload != nil {
		raw, err := codec.Marshal(a.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", a.Action, err)
		}
		if string(raw) != "null" {
			if err := codec.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("payload of %s must be a JSON object: %w", a.Action, err)
			}
		}
	}
	name, err := codec.Marshal(a.Action)
	if err != nil {
		return nil, err
	}
	fields["action"] = name
	return codec.Marshal(fields)
}

// UnmarshalJSON reads the action name and decodes the payload with the
// factory registered for it. Unregistered names keep the raw fields as a
// map.
func (a *UpdateAction) UnmarshalJSON(data []byte) error {
	var head struct {
		Action string `json:"action"`
	}
	if err := codec.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Action == "" {
		return fmt.Errorf("update action without a name")
	}

	var payload any
	if factory, ok := lookupAction(head.Action); ok {
		payload = factory()
	} else {
		payload = &map[string]any{}
	}
	if err := codec.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("failed to decode %s: %w", head.Action, err)
	}
	if m, ok := payload.(*map[string]any); ok {
		delete(*m, "action")
		payload = *m
	}

	a.Action = head.Action
	a.Payload = payload
	return nil
}

var (
	actionsMu sync.RWMutex
	actions   = map[string]func() any{}
)

// RegisterAction makes name decodable into the value returned by factory,
// which must be a pointer. Resource packages register their actions from
// init.
func RegisterAction(name string, factory func() any) {
	actionsMu.Lock()
	defer actionsMu.Unlock()
	actions[name] = factory
}

// RegisteredActions returns how many action names are known.
func RegisteredActions() int {
	actionsMu.RLock()
	defer actionsMu.RUnlock()
	return len(actions)
}

func lookupAction(name string) (func() any, bool) {
	actionsMu.RLock()
	defer actionsMu.RUnlock()
	f, ok := actions[name]
	return f, ok
}

// SetKey sets or, with an empty key, removes the user-defined key.
type SetKey struct {
	Key string `json:"key,omitempty"`
}

// SetKeyAction returns the setKey action.
func SetKeyAction(key string) UpdateAction {
	return NewAction("setKey", SetKey{Key: key})
}

func init() {
	RegisterAction("setKey", func() any { return &SetKey{} })
}
