// Push transport for finality justification notifications: Publish
// writes a ResultJustification to each subscribed websocket
// connection. The node serves the hub at /websocket/finality; no code
// in this repository calls Publish, so subscribers receive no
// messages. Uses the same upgrade-then-fan-out
// shape tendermint's own rpc/jsonrpc/server websocket route uses.
package rpc

import (
	"encoding/json"
	"net/http"
	"sync"

	"kratos/types"

	"github.com/gorilla/websocket"
	"github.com/tendermint/tendermint/libs/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FinalityHub fans out finality justifications to every subscribed
// websocket connection.
type FinalityHub struct {
	mtx   sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   log.Logger
}

func NewFinalityHub(logger log.Logger) *FinalityHub {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &FinalityHub{conns: make(map[*websocket.Conn]struct{}), log: logger}
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client disconnects; the hub never reads application messages from
// it, since this channel is push-only.
func (h *FinalityHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("rpc: websocket upgrade failed", "err", err)
		return
	}
	h.mtx.Lock()
	h.conns[conn] = struct{}{}
	h.mtx.Unlock()

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

func (h *FinalityHub) remove(conn *websocket.Conn) {
	h.mtx.Lock()
	delete(h.conns, conn)
	h.mtx.Unlock()
	conn.Close()
}

// Publish broadcasts a completed justification to every live
// subscriber, dropping (and closing) any connection whose write fails.
func (h *FinalityHub) Publish(j *types.FinalityJustification) {
	payload, err := json.Marshal(justificationResult(j))
	if err != nil {
		h.log.Error("rpc: marshaling justification for websocket push", "err", err)
		return
	}

	h.mtx.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mtx.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(conn)
		}
	}
}
