package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"designcollab/internal/design"
	"designcollab/internal/room"
)

// Coordinator routes inbound edit events to the mutation applier and fans
// confirmed mutations out to the room. One coordinator serves all sessions;
// it owns no per-connection state beyond what sessions carry themselves.
type Coordinator struct {
	store    design.Store
	applier  *design.Applier
	registry *room.Registry
	caster   *room.Broadcaster
	logger   *zap.Logger
}

func NewCoordinator(store design.Store, applier *design.Applier, registry *room.Registry, caster *room.Broadcaster, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		applier:  applier,
		registry: registry,
		caster:   caster,
		logger:   logger,
	}
}

// Handle processes one inbound event from a session. Failures never
// terminate the connection; they surface as unicast error events.
func (c *Coordinator) Handle(ctx context.Context, s *Session, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	if env.Type == "" {
		return errors.New("missing event type")
	}
	if env.DesignID == "" {
		c.sendError(s, env.Type, "missing designId", "", "")
		return nil
	}

	switch env.Type {
	case EventJoinRoom:
		c.handleJoin(ctx, s, &env)
	case EventLeaveRoom:
		c.handleLeave(s, &env)
	case EventUpdate, EventElementAdd, EventElementUpdate, EventElementDelete,
		EventBackgroundChange, EventResize, EventNameChange:
		c.handleMutation(ctx, s, &env)
	default:
		return fmt.Errorf("unknown event type: %s", env.Type)
	}
	return nil
}

func (c *Coordinator) handleJoin(ctx context.Context, s *Session, env *Envelope) {
	exists, err := c.store.Exists(ctx, env.DesignID)
	if err != nil {
		c.logger.Error("design existence check failed",
			zap.String("design_id", env.DesignID), zap.Error(err))
		c.sendError(s, EventJoinRoom, err.Error(), env.DesignID, "")
		return
	}
	if !exists {
		c.sendError(s, EventJoinRoom, "Design not found", env.DesignID, "")
		return
	}

	c.registry.Join(env.DesignID, s)
	s.track(env.DesignID)

	// The joining session is part of the room already, so it receives its
	// own user-joined notification.
	c.broadcastPresence(EventUserJoined, env.DesignID)

	c.logger.Info("session joined design",
		zap.String("session_id", s.ID()),
		zap.String("client_id", env.ClientID),
		zap.String("design_id", env.DesignID),
		zap.Int("active_users", c.registry.ActiveCount(env.DesignID)))
}

func (c *Coordinator) handleLeave(s *Session, env *Envelope) {
	c.registry.Leave(env.DesignID, s)
	s.untrack(env.DesignID)

	c.broadcastPresence(EventUserLeft, env.DesignID)

	c.logger.Info("session left design",
		zap.String("session_id", s.ID()),
		zap.String("design_id", env.DesignID),
		zap.Int("active_users", c.registry.ActiveCount(env.DesignID)))
}

// Disconnect removes the session from every room it joined and broadcasts
// the recomputed counts. Terminal: the transport stops feeding events after
// calling this.
func (c *Coordinator) Disconnect(s *Session) {
	for _, designID := range s.Joined() {
		c.registry.Leave(designID, s)
		c.broadcastPresence(EventUserLeft, designID)

		c.logger.Info("session auto-removed from design",
			zap.String("session_id", s.ID()),
			zap.String("design_id", designID),
			zap.Int("active_users", c.registry.ActiveCount(designID)))
	}
	s.clearJoined()
}

func (c *Coordinator) handleMutation(ctx context.Context, s *Session, env *Envelope) {
	// Re-check existence: the design may have been deleted between join and
	// this edit.
	exists, err := c.store.Exists(ctx, env.DesignID)
	if err != nil {
		c.sendError(s, env.Type, err.Error(), env.DesignID, env.ElementID)
		return
	}
	if !exists {
		c.sendError(s, env.Type, "Design not found", env.DesignID, env.ElementID)
		return
	}

	outType, err := c.apply(ctx, env)
	if err != nil {
		c.logger.Warn("mutation failed",
			zap.String("event", env.Type),
			zap.String("design_id", env.DesignID),
			zap.String("element_id", env.ElementID),
			zap.Error(err))
		c.sendError(s, env.Type, errMessage(err), env.DesignID, env.ElementID)
		return
	}

	// Broadcast only after the write landed, echoing the original payload
	// (sender included) with the confirmed event type.
	echo := *env
	echo.Type = outType
	msg, err := json.Marshal(&echo)
	if err != nil {
		c.sendError(s, env.Type, "marshal broadcast", env.DesignID, env.ElementID)
		return
	}
	c.caster.Broadcast(env.DesignID, msg)
}

// apply invokes the applier operation for the event and returns the
// confirmed event type to broadcast.
func (c *Coordinator) apply(ctx context.Context, env *Envelope) (string, error) {
	switch env.Type {
	case EventUpdate:
		_, err := c.applier.ReplaceFields(ctx, env.DesignID, env.Changes)
		return EventUpdateReceived, err
	case EventElementAdd:
		_, err := c.applier.AppendElement(ctx, env.DesignID, env.Element)
		return EventElementAdded, err
	case EventElementUpdate:
		_, err := c.applier.UpdateElement(ctx, env.DesignID, env.ElementID, env.Updates)
		return EventElementUpdated, err
	case EventElementDelete:
		_, err := c.applier.DeleteElement(ctx, env.DesignID, env.ElementID)
		return EventElementDeleted, err
	case EventBackgroundChange:
		_, err := c.applier.SetBackground(ctx, env.DesignID, env.CanvasBackground)
		return EventBackgroundChanged, err
	case EventResize:
		if env.Width == nil || env.Height == nil {
			return EventResized, errors.New("missing width or height")
		}
		_, err := c.applier.SetDimensions(ctx, env.DesignID, *env.Width, *env.Height)
		return EventResized, err
	case EventNameChange:
		_, err := c.applier.SetName(ctx, env.DesignID, env.Name)
		return EventNameChanged, err
	default:
		return "", fmt.Errorf("unknown mutation event: %s", env.Type)
	}
}

func (c *Coordinator) broadcastPresence(eventType, designID string) {
	msg, err := json.Marshal(presenceEvent{
		Type:        eventType,
		DesignID:    designID,
		ActiveUsers: c.registry.ActiveCount(designID),
		Timestamp:   time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	c.caster.Broadcast(designID, msg)
}

func (c *Coordinator) sendError(s *Session, event, message, designID, elementID string) {
	msg, err := json.Marshal(errorEvent{
		Type:      EventError,
		Event:     event,
		Message:   message,
		DesignID:  designID,
		ElementID: elementID,
	})
	if err != nil {
		return
	}
	if err := s.Write(msg); err != nil {
		c.logger.Warn("error notification write failed",
			zap.String("session_id", s.ID()), zap.Error(err))
	}
}

func errMessage(err error) string {
	switch {
	case errors.Is(err, design.ErrDesignNotFound):
		return "Design not found"
	case errors.Is(err, design.ErrElementNotFound):
		return "Element not found"
	default:
		return err.Error()
	}
}
