package model

// URI_WS is where clients open their websocket.
const URI_WS = "/play"

type ClientMessage struct {
	Move Point
}
