package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/trails/engine"
	"github.com/zucenko/trails/model"
	"github.com/zucenko/trails/observer"
)

type GameServer struct {
	Config       Config
	GameSessions []*GameSession
	GameRequests chan GameRequest
	SeatReleases chan *GameSession
	Upgrader     *websocket.Upgrader
}

type GameSessionState int

const (
	GS_NEW GameSessionState = iota
	GS_WAIT
	GS_PLAY
	GS_ERR
	GS_OVER
)

// GameSession owns one Engine. Only Loop touches it.
type GameSession struct {
	Id                    string
	State                 GameSessionState
	Engine                *engine.Engine
	Players               int
	PlayerSessions        []*PlayerSession
	Observers             *observer.Group
	Errors                chan model.PlayerID
	Events                chan PlayerEvent
	PlayerConnectRequests chan PlayerConnectRequest
	Done                  chan struct{}

	// seats left to hand out, owned by GameServer.Loop
	seats int
	// events collected from the engine during one call
	pending model.ServerMessage
	log     *log.Entry
}

type PlayerSessionState int

const (
	PS_NEW PlayerSessionState = iota + 1
	PS_PLAY
	PS_OVER
	PS_ERR
	PS_ERR_SEC
)

type PlayerSession struct {
	State       PlayerSessionState
	Id          model.PlayerID
	Name        string
	GameSession *GameSession
	Conn        *websocket.Conn
	Observer    *observer.Observer
	GameOver    chan struct{}
	finishOnce  sync.Once

	MessagesToSend chan model.ServerMessage

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPing    time.Time
	DebugPings       int
}
