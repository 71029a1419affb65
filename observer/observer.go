// Package observer delivers server messages to one destination and keeps
// events from echoing back to the observer that produced them.
package observer

import (
	"github.com/google/uuid"
	"github.com/zucenko/trails/model"
)

type Sender interface {
	Send(model.ServerMessage) bool
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(model.ServerMessage) bool

func (f SenderFunc) Send(m model.ServerMessage) bool {
	return f(m)
}

type Observer struct {
	id     string
	sender Sender
}

// New uses a fresh uuid when id is empty.
func New(id string, sender Sender) *Observer {
	if id == "" {
		id = uuid.New().String()
	}
	return &Observer{id: id, sender: sender}
}

func (o *Observer) ID() string {
	return o.id
}

// Update forwards m unless it came from this observer. Messages without a
// source are stamped with this observer's id.
func (o *Observer) Update(m model.ServerMessage) bool {
	if m.Source == o.id {
		return false
	}
	if m.Source == "" {
		m.Source = o.id
	}
	return o.sender.Send(m)
}

// Group fans a message out to observers in the order they were added.
type Group struct {
	observers []*Observer
}

func (g *Group) Add(o *Observer) {
	g.observers = append(g.observers, o)
}

func (g *Group) Len() int {
	return len(g.observers)
}

// Broadcast returns how many observers accepted m.
func (g *Group) Broadcast(m model.ServerMessage) int {
	delivered := 0
	for _, o := range g.observers {
		if o.Update(m) {
			delivered++
		}
	}
	return delivered
}
