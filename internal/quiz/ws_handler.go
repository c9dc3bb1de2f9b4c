package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pharmexam/examprep/internal/auth"
	httperrors "github.com/pharmexam/examprep/pkg/http/errors"
	"github.com/pharmexam/examprep/pkg/http/ws"
)

// WSHandler drives quiz sessions over a WebSocket: each client message is
// one session operation, each reply the resulting snapshot, fanned out to
// every tab attached to the session.
type WSHandler struct {
	manager  *Manager
	hub      *ws.Hub
	authSvc  *auth.Service
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewWSHandler(manager *Manager, hub *ws.Hub, authSvc *auth.Service, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		manager: manager,
		hub:     hub,
		authSvc: authSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict origins once the web client's domains are final
				return true
			},
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection and authenticates the user.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
		return
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket token validation failed")
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	wsConn := ws.NewConnection(conn, h.logger)
	connID := h.hub.Register(wsConn)
	owner := claims.UserID

	go wsConn.WritePump()
	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(r.Context(), connID, owner, msg)
	})
	h.hub.Unregister(connID)
}

func (h *WSHandler) handleMessage(ctx context.Context, connID, owner uuid.UUID, msg ws.Message) error {
	switch msg.Type {
	case ws.TypePing:
		return h.hub.Send(connID, ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})

	case ws.TypeStartSession:
		var payload ws.StartSessionPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid payload")
			}
		}

		id, snap, err := h.manager.Start(ctx, owner, payload.Category)
		if err != nil {
			return h.sendError(connID, msg.RequestID, httperrors.ErrCodeSessionStartFailed, "Failed to start session")
		}
		h.hub.Attach(id, connID)
		return h.broadcastSnapshot(id, msg.RequestID, snap)

	case ws.TypeSelectAnswer:
		var payload ws.SelectAnswerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid payload")
		}
		return h.operate(connID, owner, payload.SessionID, msg.RequestID, func(id uuid.UUID) (Snapshot, error) {
			return h.manager.Select(owner, id, payload.Choice)
		})

	case ws.TypeCheckAnswer:
		var payload ws.CheckAnswerPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid payload")
		}
		return h.operate(connID, owner, payload.SessionID, msg.RequestID, func(id uuid.UUID) (Snapshot, error) {
			return h.manager.Check(owner, id)
		})

	case ws.TypeNextQuestion:
		return h.navigate(connID, owner, msg, func(id uuid.UUID) (Snapshot, error) {
			return h.manager.Next(owner, id)
		})

	case ws.TypePreviousQuestion:
		return h.navigate(connID, owner, msg, func(id uuid.UUID) (Snapshot, error) {
			return h.manager.Previous(owner, id)
		})

	case ws.TypeJumpToQuestion:
		var payload ws.JumpToQuestionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid payload")
		}
		return h.operate(connID, owner, payload.SessionID, msg.RequestID, func(id uuid.UUID) (Snapshot, error) {
			return h.manager.JumpTo(owner, id, payload.Index)
		})

	case ws.TypeToggleFlag:
		var payload ws.ToggleFlagPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid payload")
		}
		return h.operate(connID, owner, payload.SessionID, msg.RequestID, func(id uuid.UUID) (Snapshot, error) {
			return h.manager.ToggleFlag(owner, id, payload.Index)
		})

	case ws.TypeRestartSession:
		return h.navigate(connID, owner, msg, func(id uuid.UUID) (Snapshot, error) {
			return h.manager.Restart(context.Background(), owner, id)
		})

	case ws.TypeRequestSnapshot:
		return h.navigate(connID, owner, msg, func(id uuid.UUID) (Snapshot, error) {
			return h.manager.Snapshot(owner, id)
		})

	default:
		return h.sendError(connID, msg.RequestID, httperrors.ErrCodeUnknownMessageType, "Unknown message type: "+msg.Type)
	}
}

// navigate covers the operations whose payload is just a session reference.
func (h *WSHandler) navigate(connID, owner uuid.UUID, msg ws.Message, op func(uuid.UUID) (Snapshot, error)) error {
	var payload ws.NavigatePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid payload")
	}
	return h.operate(connID, owner, payload.SessionID, msg.RequestID, op)
}

func (h *WSHandler) operate(connID, owner uuid.UUID, sessionID, requestID string, op func(uuid.UUID) (Snapshot, error)) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return h.sendError(connID, requestID, httperrors.ErrCodeInvalidPayload, "Invalid session ID")
	}

	snap, err := op(id)
	if err != nil {
		code := httperrors.ErrCodeInvalidOperation
		switch {
		case errors.Is(err, ErrSessionNotFound):
			code = httperrors.ErrCodeSessionNotFound
		case errors.Is(err, ErrNoSelection):
			code = httperrors.ErrCodeNoSelection
		case errors.Is(err, ErrInvalidChoice):
			code = httperrors.ErrCodeInvalidChoice
		case errors.Is(err, ErrIndexOutOfRange):
			code = httperrors.ErrCodeQuestionOutOfRange
		}
		return h.sendError(connID, requestID, code, err.Error())
	}

	h.hub.Attach(id, connID)
	if err := h.broadcastSnapshot(id, requestID, snap); err != nil {
		return err
	}

	if snap.Results != nil {
		results := ws.SessionResultsPayload{
			SessionID:  id.String(),
			Score:      snap.Results.Score,
			Total:      snap.Results.Total,
			Percentage: snap.Results.Percentage,
		}
		data, err := json.Marshal(results)
		if err != nil {
			return err
		}
		return h.hub.BroadcastToSession(id, ws.Message{Type: ws.TypeSessionResults, Payload: data})
	}
	return nil
}

func (h *WSHandler) broadcastSnapshot(id uuid.UUID, requestID string, snap Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(ws.SessionSnapshotPayload{
		SessionID: id.String(),
		Snapshot:  body,
	})
	if err != nil {
		return err
	}
	return h.hub.BroadcastToSession(id, ws.Message{
		Type:      ws.TypeSessionSnapshot,
		Payload:   payload,
		RequestID: requestID,
	})
}

func (h *WSHandler) sendError(connID uuid.UUID, requestID, code, message string) error {
	payload, err := json.Marshal(ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	return h.hub.Send(connID, ws.Message{Type: ws.TypeError, Payload: payload, RequestID: requestID})
}
