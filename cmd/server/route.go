package main

import (
	"github.com/matryer/way"
	"github.com/zucenko/trails/model"
)

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", model.URI_WS, s.GameServer.HandleHttpCall())
}
