package webd

import (
	"encoding/json"

	"github.com/olahol/melody"
	"github.com/trailimage/trailmap/events"
)

type websocketAction string

var websocketActionUpdated websocketAction = "updated"

type broadcast struct {
	Action websocketAction    `json:"action"`
	Post   events.PostUpdated `json:"post"`
}

// initMelody sets up the websocket hub and the subscription that feeds it.
// Every post update drops the post's cached renders before it is announced,
// so clients reloading on the message get fresh output. New clients are
// sent the most recent updates.
func (s *WebDaemon) initMelody() {
	s.melodyInstance = melody.New()

	s.melodyInstance.HandleConnect(func(session *melody.Session) {
		s.logger.Info("Websocket connected", "remote", session.Request.RemoteAddr)
		for _, update := range s.recent.Get() {
			b, err := json.Marshal(broadcast{Action: websocketActionUpdated, Post: update})
			if err != nil {
				continue
			}
			if err := session.Write(b); err != nil {
				s.logger.Warn("Failed to replay update", "error", err)
				return
			}
		}
	})

	// Clients have nothing to tell us. Log and drop.
	s.melodyInstance.HandleMessage(func(session *melody.Session, msg []byte) {
		s.logger.Debug("Websocket message", "remote", session.Request.RemoteAddr, "message", string(msg))
	})

	s.melodyInstance.HandleDisconnect(func(session *melody.Session) {
		s.logger.Info("Websocket disconnected", "remote", session.Request.RemoteAddr)
	})

	s.melodyInstance.HandleError(func(session *melody.Session, e error) {
		s.logger.Warn("Websocket error", "error", e, "remote", session.Request.RemoteAddr)
	})

	// The feed blocks senders until every subscriber receives,
	// so this loop must never stall.
	s.updates = make(chan events.PostUpdated)
	s.updatesSub = events.PostUpdatedFeed.Subscribe(s.updates)
	go func() {
		for {
			select {
			case update := <-s.updates:
				s.recent.Add(update)
				if s.site.Output != nil {
					n := s.site.Output.RemoveSlug(update.Slug)
					s.logger.Debug("Invalidated output", "slug", update.Slug, "keys", n)
				}
				b, err := json.Marshal(broadcast{Action: websocketActionUpdated, Post: update})
				if err != nil {
					s.logger.Error("Failed to marshal update", "error", err)
					continue
				}
				if s.melodyInstance.IsClosed() {
					continue
				}
				if err := s.melodyInstance.Broadcast(b); err != nil {
					s.logger.Warn("Failed to broadcast update", "error", err)
				}
			case err, ok := <-s.updatesSub.Err():
				if ok && err != nil {
					s.logger.Error("Post update subscription failed", "error", err)
				}
				return
			}
		}
	}()
}
