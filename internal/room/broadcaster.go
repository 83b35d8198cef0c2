package room

import (
	"sync"

	"go.uber.org/zap"
)

// Broadcaster fans a message out to every member of a room. The member set
// deliberately includes the sender of the originating event: clients
// reconcile their optimistic local state against their own echo.
type Broadcaster struct {
	registry *Registry
	logger   *zap.Logger
}

func NewBroadcaster(registry *Registry, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, logger: logger}
}

// Broadcast writes msg to all current members of the design's room.
// Writes run concurrently; members whose connection fails are removed from
// the room and closed.
func (b *Broadcaster) Broadcast(designID string, msg []byte) {
	members := b.registry.Members(designID)
	if len(members) == 0 {
		return
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failed []Member

	for _, m := range members {
		wg.Add(1)
		go func(m Member) {
			defer wg.Done()
			if err := m.Write(msg); err != nil {
				b.logger.Warn("broadcast write failed",
					zap.String("design_id", designID),
					zap.String("session_id", m.ID()),
					zap.Error(err))
				mu.Lock()
				failed = append(failed, m)
				mu.Unlock()
			}
		}(m)
	}
	wg.Wait()

	for _, m := range failed {
		b.registry.Leave(designID, m)
		m.Close()
	}
}
