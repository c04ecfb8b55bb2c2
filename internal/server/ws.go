package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// PredictSocket answers prediction requests over a WebSocket. Each text
// message carries the same JSON body as POST /predict and gets exactly one
// reply, in order.
type PredictSocket struct {
	server *Server
}

// NewPredictSocket creates a PredictSocket backed by s.
func NewPredictSocket(s *Server) *PredictSocket {
	return &PredictSocket{server: s}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PredictSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.server.config.Log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(h.server.config.MaxBodyBytes)
	connID := newRequestID()
	log := h.server.config.Log.WithField("conn_id", connID)
	log.Debug("Prediction socket opened")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("Prediction socket closed: %v", err)
			}
			return
		}

		if err := conn.WriteJSON(h.reply(connID, msg)); err != nil {
			log.Warnf("Prediction socket write failed: %v", err)
			return
		}
	}
}

func (h *PredictSocket) reply(connID string, msg []byte) (resp any) {
	defer func() {
		if p := recover(); p != nil {
			resp = h.fail(connID, fmt.Errorf("%w: %v", ErrPredictionPanic, p))
		}
	}()

	var req predictRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return h.fail(connID, fmt.Errorf("decode request: %w", err))
	}

	label, err := h.server.predict(req.Image)
	if err != nil {
		return h.fail(connID, err)
	}
	return predictResponse{Prediction: label}
}

func (h *PredictSocket) fail(connID string, err error) errorResponse {
	h.server.config.Log.WithField("conn_id", connID).Errorf("Prediction failed: %v", err)
	h.server.config.Reporter.Report(err, map[string]string{
		"conn_id":  connID,
		"endpoint": "/ws/predict",
	})
	return errorResponse{Error: err.Error()}
}
