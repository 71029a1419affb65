package server

import (
	"encoding/gob"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/trails/engine"
	"github.com/zucenko/trails/model"
	"github.com/zucenko/trails/observer"
)

func NewGameServer(cfg Config) *GameServer {
	return &GameServer{
		Config:       cfg,
		GameSessions: make([]*GameSession, 0),
		GameRequests: make(chan GameRequest),
		SeatReleases: make(chan *GameSession),
		Upgrader:     &websocket.Upgrader{},
	}
}

func (s *GameServer) HandleHttpCall() http.HandlerFunc {
	timeout := 200 * time.Millisecond
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("HandleHttpCall - Conection received.............................")
		if !websocket.IsWebSocketUpgrade(r) {
			log.Warn("HandleHttpCall not a websocket request")
			w.WriteHeader(GAME_INVALIDE.ToHttp())
			return
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "player"
		}

		gcas := make(chan GameContextAwaiting, 1)
		select {
		case s.GameRequests <- GameRequest{GameContextAwaiting: gcas}:
			log.Printf("HandleHttpCall -> GameServer.GameRequests")
		case <-time.After(timeout):
			log.Warn("GameRequests TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}

		// find/create GameSession
		var gca GameContextAwaiting
		select {
		case gca = <-gcas:
			log.Printf("HandleHttpCall GameContextAwaiting <- code:%d", gca.ResponseCode)
			switch gca.ResponseCode {
			case GAME_INVALIDE:
				w.WriteHeader(gca.ResponseCode.ToHttp())
				return
			case GAME_READY: //ony good option
				log.Printf("HandleHttpCall ok, have GameSession %s", gca.GameSession.Id)
			default:
				log.Errorf("gca.ResponseCode not expected:%v", gca.ResponseCode)
				w.WriteHeader(HTTP_SERVER_ERR)
				return
			}
		case <-time.After(timeout):
			log.Warnf("HandleHttpCall GameContextAwaiting <- TIMEOUTED")
			// the answer may still come with a seat in it
			go func() {
				if late := <-gcas; late.GameSession != nil {
					s.releaseSeat(late.GameSession)
				}
			}()
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}

		log.Info("HandleHttpCall lets upgrade websocket ")
		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already answered the request
			log.Printf("HandleHttpCall websocket upgrade err %v", err)
			s.releaseSeat(gca.GameSession)
			return
		}
		defer con.Close()

		gameOver := make(chan struct{})
		select {
		case gca.GameSession.PlayerConnectRequests <- PlayerConnectRequest{
			Con:      con,
			Name:     name,
			GameOver: gameOver}:
		case <-gca.GameSession.Done:
			log.Warn("HandleHttpCall session ended before join")
			return
		case <-time.After(timeout):
			log.Warn("HandleHttpCall PlayerConnectRequests TIMEOUTED")
			s.releaseSeat(gca.GameSession)
			return
		}

		log.Info("HandleHttpCall and wait for gameover ")
		<-gameOver
	}
}

func (s *GameServer) Loop() {
	log.Printf("GameServer.Loop starting")
	for {
		select {
		case gameReq := <-s.GameRequests:
			log.Printf("GameServer.Loop gameReq")
			gs, err := s.openSession()
			if err != nil {
				log.WithError(err).Error("GameServer.Loop cant create GameSession")
				gameReq.GameContextAwaiting <- GameContextAwaiting{ResponseCode: GAME_INVALIDE}
				continue
			}
			gameReq.GameContextAwaiting <- GameContextAwaiting{
				ResponseCode: GAME_READY,
				GameSession:  gs,
			}
		case gs := <-s.SeatReleases:
			gs.seats++
			log.Printf("GameServer.Loop seat back in session %s, %d free", gs.Id, gs.seats)
		}
	}
}

// releaseSeat gives back a seat whose player never reached the session.
// It returns once Loop has taken it, so the next request sees the seat.
func (s *GameServer) releaseSeat(gs *GameSession) {
	s.SeatReleases <- gs
}

// openSession returns a session with a free seat and takes the seat,
// creating the session if none is waiting.
func (s *GameServer) openSession() (*GameSession, error) {
	alive := s.GameSessions[:0]
	for _, gs := range s.GameSessions {
		select {
		case <-gs.Done:
			log.Infof("GameServer forgets finished session %s", gs.Id)
		default:
			alive = append(alive, gs)
		}
	}
	s.GameSessions = alive

	for _, gs := range s.GameSessions {
		if gs.seats > 0 {
			gs.seats--
			return gs, nil
		}
	}

	log.Info("create GameSession")
	gs, err := NewGameSession(s.Config)
	if err != nil {
		return nil, err
	}
	go gs.Loop()
	s.GameSessions = append(s.GameSessions, gs)
	gs.seats--
	return gs, nil
}

func NewGameSession(cfg Config) (*GameSession, error) {
	gs := &GameSession{
		Id:                    uuid.New().String(),
		State:                 GS_NEW,
		Players:               cfg.Gameplay.Players,
		PlayerSessions:        make([]*PlayerSession, 0),
		Observers:             &observer.Group{},
		Errors:                make(chan model.PlayerID),
		Events:                make(chan PlayerEvent),
		PlayerConnectRequests: make(chan PlayerConnectRequest),
		Done:                  make(chan struct{}),
		seats:                 cfg.Gameplay.Players,
	}
	gs.log = log.WithField("session", gs.Id)
	eng, err := engine.New(cfg.Engine(),
		engine.WithSink(sessionSink{gs: gs}),
		engine.WithLogger(gs.log.WithField("component", "engine")))
	if err != nil {
		return nil, err
	}
	gs.Engine = eng
	return gs, nil
}

func (gs *GameSession) Loop() {
	gs.log.Info("GameSession.Loop start")
	defer close(gs.Done)
	for {
		select {
		case pcr := <-gs.PlayerConnectRequests:
			gs.log.Info("GameSession.Loop PlayerConnectRequests")
			gs.addPlayer(pcr.Con, pcr.Name, pcr.GameOver)
		case errPlayer := <-gs.Errors:
			gs.log.Warn("killing GS")
			gs.fail(errPlayer)
			return
		case pe := <-gs.Events:
			// the real game
			messageToPlayer, messageToOthers := gs.Turn(pe)
			if ps := gs.playerSession(pe.Player); ps != nil && messageToPlayer != nil {
				ps.Send(*messageToPlayer)
			}
			if messageToOthers != nil {
				gs.Observers.Broadcast(*messageToOthers)
			}
			if gs.State == GS_OVER {
				gs.log.Info("GameSession.Loop game over")
				return
			}
		}
	}
}

// Turn runs one move request against the engine. The mover always gets an
// answer; the others only hear about accepted moves.
func (gs *GameSession) Turn(pe PlayerEvent) (
	messageToPlayer *model.ServerMessage,
	messageToOthers *model.ServerMessage) {
	if gs.State != GS_PLAY || !gs.Engine.CanMove(pe.Target, pe.Player) {
		rejected := model.MoveResult{Target: pe.Target}
		if p, found := gs.Engine.Player(pe.Player); found {
			rejected.Player = p
		}
		return &model.ServerMessage{Moves: []model.MoveResult{rejected}}, nil
	}
	if err := gs.Engine.Move(pe.Target, pe.Player); err != nil {
		gs.log.WithError(err).Warn("GameSession.Turn move failed")
		gs.pending = model.ServerMessage{}
		return nil, nil
	}
	gs.checkGameOver()

	others := gs.flush(pe.Player)
	mine := others
	return &mine, &others
}

// checkGameOver ends the game once at most one player is left, or nobody in
// a solo game.
func (gs *GameSession) checkGameOver() {
	active := gs.Engine.Active()
	if len(active) > 1 || (len(active) == 1 && gs.Players < 2) {
		return
	}
	var winner model.PlayerID
	if len(active) == 1 {
		winner = active[0]
	}
	gs.Engine.End()
	gs.State = GS_OVER
	for _, ps := range gs.PlayerSessions {
		ps.State = PS_OVER
		gs.log.Infof("player %s %s", ps.Name, ps.State.Name())
	}
	gs.pending.GameOver = append(gs.pending.GameOver, model.GameOver{Winner: winner})
	gs.log.Infof("game over, winner %q", winner)
}

func (gs *GameSession) fail(errPlayer model.PlayerID) {
	gs.State = GS_ERR
	for _, ps := range gs.PlayerSessions {
		if ps.Id == errPlayer {
			ps.State = PS_ERR
		} else {
			ps.State = PS_ERR_SEC
		}
		gs.log.Warnf("player %s %s", ps.Name, ps.State.Name())
		ps.finish()
	}
}

func (gs *GameSession) addPlayer(
	conn *websocket.Conn,
	name string,
	gameOver chan struct{},
) {
	gs.log.Printf("GameSession.addPlayer %s", name)
	ps := gs.newPlayerSession(conn, name, gameOver)
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			ps.DebugLastPing = time.Now()
			ps.DebugPings++
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	// start processing input from client
	go ps.LoopChannelRead()
	// start sending from server
	go ps.LoopChannelWrite()
	gs.join(ps)
}

func (gs *GameSession) newPlayerSession(conn *websocket.Conn, name string, gameOver chan struct{}) *PlayerSession {
	ps := &PlayerSession{
		State:          PS_NEW,
		Id:             model.PlayerID(uuid.New().String()),
		Name:           name,
		GameSession:    gs,
		Conn:           conn,
		GameOver:       gameOver,
		MessagesToSend: make(chan model.ServerMessage, 10),
	}
	ps.Observer = observer.New(string(ps.Id), ps)
	return ps
}

// join spawns the player and starts the game once the session is full.
func (gs *GameSession) join(ps *PlayerSession) {
	if gs.State != GS_NEW && gs.State != GS_WAIT {
		gs.log.Warnf("GameSession.join in state %s", gs.State.Name())
		ps.finish()
		return
	}
	if err := gs.Engine.Spawn(ps.Id, ps.Name); err != nil {
		gs.log.WithError(err).Warn("GameSession.join")
		ps.finish()
		return
	}
	gs.PlayerSessions = append(gs.PlayerSessions, ps)
	gs.Observers.Add(ps.Observer)
	if m := gs.flush(ps.Id); !empty(m) {
		gs.Observers.Broadcast(m)
	}

	if len(gs.PlayerSessions) < gs.Players {
		gs.State = GS_WAIT
		return
	}
	gs.State = GS_PLAY
	for _, p := range gs.PlayerSessions {
		p.State = PS_PLAY
		p.Send(gs.MakeGameSetupMessage(p))
	}
}

func (gs *GameSession) playerSession(id model.PlayerID) *PlayerSession {
	for _, ps := range gs.PlayerSessions {
		if ps.Id == id {
			return ps
		}
	}
	return nil
}

func (gs *GameSession) MakeGameSetupMessage(ps *PlayerSession) model.ServerMessage {
	cfg := gs.Engine.Config()
	return model.ServerMessage{
		Setup: []model.Setup{{
			Size:         cfg.MapSize,
			CellLifetime: cfg.CellLifetime,
			Turn:         gs.Engine.Turn(),
			PlayerKey:    ps.Id,
			Players:      gs.Engine.Players(),
			Cells:        gs.Engine.Grid().Cells(),
		}},
	}
}

// Send never blocks the session loop, a slow client loses messages.
func (ps *PlayerSession) Send(m model.ServerMessage) bool {
	select {
	case ps.MessagesToSend <- m:
		return true
	default:
		log.Warnf("PlayerSession %s MessagesToSend FULL, dropping", ps.Id)
		return false
	}
}

func (ps *PlayerSession) finish() {
	ps.finishOnce.Do(func() {
		close(ps.GameOver)
	})
}

func (ps *PlayerSession) reportError() {
	select {
	case ps.GameSession.Errors <- ps.Id:
	case <-ps.GameOver:
	case <-ps.GameSession.Done:
	}
}

func (ps *PlayerSession) LoopChannelRead() {
	log.Printf("LoopChannelRead STARTED")
loop:
	for {
		messageType, r, err := ps.Conn.NextReader()
		if err != nil {
			log.Printf("LoopChannelRead err reading message from Conn %v", err)
			ps.reportError()
			break loop
		}
		log.Debugf("LoopChannelRead received message type: %d", messageType)
		cm := &model.ClientMessage{}
		if err = gob.NewDecoder(r).Decode(cm); err != nil {
			log.Warn("cant decode")
			ps.reportError()
			break loop
		}
		ps.DebugLastMessage = time.Now()
		ps.DebugInMessages++

		select {
		case ps.GameSession.Events <- PlayerEvent{Player: ps.Id, Target: cm.Move}:
		case <-ps.GameOver:
			break loop
		case <-ps.GameSession.Done:
			break loop
		}
	}
	log.Printf("LoopChannelRead ENDED")
}

// this function only consumes. no worries about full buffer stuck
func (ps *PlayerSession) LoopChannelWrite() {
	log.Printf("PlayerSession.LoopChannelWrite STARTED")
loop:
	for {
		select {
		case mes := <-ps.MessagesToSend:
			if err := ps.write(mes); err != nil {
				log.Warnf("PlayerSession.LoopChannelWrite %v", err)
				ps.reportError()
				break loop
			}
			ps.DebugOutMessages++
			if len(mes.GameOver) > 0 {
				ps.finish()
				break loop
			}
		case <-ps.GameOver:
			break loop
		case <-ps.GameSession.Done:
			ps.drain()
			break loop
		}
	}
	log.Printf("LoopChannelWrite ENDED")
}

// drain writes whatever the finished session left queued, then lets the
// http handler go.
func (ps *PlayerSession) drain() {
	defer ps.finish()
	for {
		select {
		case mes := <-ps.MessagesToSend:
			if err := ps.write(mes); err != nil {
				return
			}
			ps.DebugOutMessages++
		default:
			return
		}
	}
}

func (ps *PlayerSession) write(mes model.ServerMessage) error {
	w, err := ps.Conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(w).Encode(mes); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
