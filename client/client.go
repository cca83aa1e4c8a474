// Package client composes the signaling client: a connection supervisor
// over the websocket transport, the reaction broadcaster, and the gesture
// reducer, wired together with explicit handles instead of ambient state.
package client

import (
	"encoding/json"
	"log"

	"accessible_connect/client/connection"
	"accessible_connect/client/gesture"
	"accessible_connect/client/reaction"
	"accessible_connect/models"
)

// EventSource is the inbound side of the signaling connection.
type EventSource interface {
	On(event string, fn func(data json.RawMessage))
}

// lifecycleSource is implemented by transports that report their own
// connect/disconnect transitions, like connection.WebSocketTransport.
type lifecycleSource interface {
	OnConnect(fn func(socketID string))
	OnDisconnect(fn func(reason string))
}

// Client ties the pipeline together: classifier frames flow through the
// reducer into the broadcaster, and server events flow back into the
// broadcaster's queues.
type Client struct {
	Supervisor  *connection.Supervisor
	Reducer     *gesture.Reducer
	Broadcaster *reaction.Broadcaster
}

// New builds a client for the given participant. cfg.Transport and source
// are usually the same WebSocketTransport; when the source also reports
// lifecycle transitions, they are routed into the supervisor here.
func New(cfg connection.Config, source EventSource, notifier reaction.Notifier) *Client {
	supervisor := connection.NewSupervisor(cfg)
	broadcaster := reaction.NewBroadcaster(cfg.Self, supervisor, &reaction.Transcript{}, notifier)
	reducer := gesture.NewReducer()

	c := &Client{
		Supervisor:  supervisor,
		Reducer:     reducer,
		Broadcaster: broadcaster,
	}
	c.subscribe(source)
	if ls, ok := source.(lifecycleSource); ok {
		ls.OnConnect(supervisor.HandleConnect)
		ls.OnDisconnect(supervisor.HandleDisconnect)
	}
	return c
}

// subscribe routes server events into the broadcaster.
func (c *Client) subscribe(source EventSource) {
	source.On(models.EventBroadcastMessageServer, func(data json.RawMessage) {
		var msg models.BroadcastServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Malformed broadcast message: %v", err)
			return
		}
		c.Broadcaster.HandleBroadcast(msg)
	})

	source.On(models.EventMessageReceived, func(data json.RawMessage) {
		var msg models.DirectedServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Malformed directed message: %v", err)
			return
		}
		c.Broadcaster.HandleDirected(msg)
	})

	source.On(models.EventBroadcastSpeakingServer, func(data json.RawMessage) {
		var msg models.SpeakingServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Malformed speaking message: %v", err)
			return
		}
		c.Broadcaster.HandleSpeaking(msg)
	})
}

// IngestFrame feeds one classifier probability vector through the reducer
// and broadcasts whatever it releases. The reducer's hand-raise gate is
// kept in sync with the sticky hand-raise state.
func (c *Client) IngestFrame(probs []float64) error {
	code, released, err := c.Reducer.Ingest(probs)
	if err != nil {
		return err
	}
	if !released {
		return nil
	}

	if err := c.Broadcaster.Release(code); err != nil {
		return err
	}
	c.Reducer.SetHandRaised(c.Broadcaster.HandRaisedLocally())
	return nil
}

// LowerHand releases the sticky hand-raise explicitly.
func (c *Client) LowerHand() error {
	if err := c.Broadcaster.Release(models.SignalLowerHand); err != nil {
		return err
	}
	c.Reducer.SetHandRaised(false)
	return nil
}
