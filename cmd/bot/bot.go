package main

import (
	"flag"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/trails/client"
)

func main() {
	addr := flag.String("server", "ws://localhost:8080", "game server")
	name := flag.String("name", "bot", "player name")
	think := flag.Duration("think", 300*time.Millisecond, "pause before each move")
	flag.Parse()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	c, err := client.Dial(*addr, *name)
	if err != nil {
		log.Fatalf("cant join: %v", err)
	}
	defer c.Close()
	log.Infof("%s joined %s", *name, *addr)

	// a move is in flight until the server answers it
	waiting := false
	for !c.Over {
		m, err := c.Receive()
		if err != nil {
			log.Warnf("connection lost: %v", err)
			return
		}
		for _, mv := range m.Moves {
			if mv.Player.ID != c.Id {
				continue
			}
			waiting = false
			if !mv.Success {
				log.Warnf("move to %v refused", mv.Target)
			}
		}
		moves := c.LegalMoves()
		if waiting || len(moves) == 0 {
			continue
		}
		time.Sleep(*think)
		to := moves[rnd.Intn(len(moves))]
		log.Infof("turn %d: moving to %v", c.Turn, to)
		if err := c.Move(to); err != nil {
			log.Warnf("cant send move: %v", err)
			return
		}
		waiting = true
	}
	if c.Winner == c.Id {
		log.Info("won!")
	} else {
		log.Infof("game over, winner %q", c.Winner)
	}
}
