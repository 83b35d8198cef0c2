package session

import "designcollab/internal/design"

// Inbound event types.
const (
	EventJoinRoom         = "join-room"
	EventLeaveRoom        = "leave-room"
	EventUpdate           = "update"
	EventElementAdd       = "element-add"
	EventElementUpdate    = "element-update"
	EventElementDelete    = "element-delete"
	EventBackgroundChange = "background-change"
	EventResize           = "resize"
	EventNameChange       = "name-change"
)

// Outbound event types.
const (
	EventUserJoined        = "user-joined"
	EventUserLeft          = "user-left"
	EventUpdateReceived    = "update-received"
	EventElementAdded      = "element-added"
	EventElementUpdated    = "element-updated"
	EventElementDeleted    = "element-deleted"
	EventBackgroundChanged = "background-changed"
	EventResized           = "resized"
	EventNameChanged       = "name-changed"
	EventError             = "error"
)

// Envelope is the wire format for all real-time events: a flat JSON object
// with a type discriminator. Fields not relevant to a given event stay
// empty. Keeping one envelope means a confirmed mutation echoes the original
// payload untouched, with only the type rewritten.
type Envelope struct {
	Type             string                 `json:"type"`
	DesignID         string                 `json:"designId,omitempty"`
	ClientID         string                 `json:"clientId,omitempty"`
	Timestamp        int64                  `json:"timestamp,omitempty"`
	Changes          map[string]interface{} `json:"changes,omitempty"`
	Element          design.Element         `json:"element,omitempty"`
	ElementID        string                 `json:"elementId,omitempty"`
	Updates          map[string]interface{} `json:"updates,omitempty"`
	CanvasBackground string                 `json:"canvasBackground,omitempty"`
	Width            *int                   `json:"width,omitempty"`
	Height           *int                   `json:"height,omitempty"`
	Name             string                 `json:"name,omitempty"`
}

// presenceEvent announces room membership changes.
type presenceEvent struct {
	Type        string `json:"type"`
	DesignID    string `json:"designId"`
	ActiveUsers int    `json:"activeUsers"`
	Timestamp   int64  `json:"timestamp"`
}

// errorEvent is unicast to the originating session only; it is never
// broadcast to the room.
type errorEvent struct {
	Type      string `json:"type"`
	Event     string `json:"event"`
	Message   string `json:"message"`
	DesignID  string `json:"designId,omitempty"`
	ElementID string `json:"elementId,omitempty"`
}
