package finalize

import (
	"encoding/json"
	"fmt"
)

// Listener is a callback function that receives events during
// finalization. A nil Listener discards them.
type Listener func(fmt.Stringer)

func jsonString(v interface{}) string {
	b, _ := json.Marshal(map[string]interface{}{
		fmt.Sprintf("%T", v): v,
	})
	return string(b)
}

// EventFieldComputed is emitted when the engine derives a field value.
type EventFieldComputed struct {
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

func (e EventFieldComputed) String() string { return jsonString(e) }

// EventBinaryAdded is emitted when a default binary package is declared.
type EventBinaryAdded struct {
	Package string `json:"package,omitempty"`
	Role    string `json:"role,omitempty"`
}

func (e EventBinaryAdded) String() string { return jsonString(e) }

// EventFinalized is emitted once the declaration is complete and frozen.
type EventFinalized struct {
	Source   string `json:"source,omitempty"`
	Version  string `json:"version,omitempty"`
	Binaries int    `json:"binaries,omitempty"`
}

func (e EventFinalized) String() string { return jsonString(e) }
