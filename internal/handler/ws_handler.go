package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/campfire-chat/campfire/internal/config"
	"github.com/campfire-chat/campfire/internal/domain"
	"github.com/campfire-chat/campfire/internal/hub"
	"github.com/campfire-chat/campfire/internal/ident"
	"github.com/campfire-chat/campfire/internal/logging"
	"github.com/campfire-chat/campfire/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	service service.ChatService
	wsCfg   config.WebSocketConfig
}

func NewWSHandler(svc service.ChatService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		service: svc,
		wsCfg:   wsCfg,
	}
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		lg := logging.L()
		lg.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(ident.NewConnectionID(), conn, h.wsCfg)

	ctx := context.Background()
	if err := h.service.HandleConnect(ctx, client); err != nil {
		lg := logging.L()
		lg.Error().Str(logging.FieldConnID, client.ID()).Err(err).Msg("connect failed")
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(h.handleFrame, func(c *hub.Client) {
		if err := h.service.HandleDisconnect(ctx, c); err != nil {
			lg := logging.L()
			lg.Error().Str(logging.FieldConnID, c.ID()).Err(err).Msg("disconnect cleanup failed")
		}
	})
}

// handleFrame decodes the type tag once and routes to the matching
// service method. Malformed or unrecognized frames are logged and
// dropped; the connection stays open.
func (h *WSHandler) handleFrame(client *hub.Client, frame []byte) {
	var base domain.BaseEvent
	if err := json.Unmarshal(frame, &base); err != nil {
		lg := logging.L()
		lg.Warn().Str(logging.FieldConnID, client.ID()).Err(err).Msg("malformed frame dropped")
		return
	}

	ctx := context.Background()

	var err error
	switch base.Type {
	case domain.EvtUser:
		var ev domain.UserEvent
		if err = json.Unmarshal(frame, &ev); err == nil {
			err = h.service.HandleIdentify(ctx, client, ev)
		}

	case domain.EvtCreateRoom:
		var ev domain.CreateRoomEvent
		if err = json.Unmarshal(frame, &ev); err == nil {
			err = h.service.HandleCreateRoom(ctx, client, ev)
		}

	case domain.EvtJoinRoom:
		var ev domain.JoinRoomEvent
		if err = json.Unmarshal(frame, &ev); err == nil {
			err = h.service.HandleJoinRoom(ctx, client, ev)
		}

	case domain.EvtMessage:
		var ev domain.PostEvent
		if err = json.Unmarshal(frame, &ev); err == nil {
			err = h.service.HandlePost(ctx, client, ev, false)
		}

	case domain.EvtImage:
		var ev domain.PostEvent
		if err = json.Unmarshal(frame, &ev); err == nil {
			err = h.service.HandlePost(ctx, client, ev, true)
		}

	case domain.EvtDeleteRoom:
		var ev domain.DeleteRoomEvent
		if err = json.Unmarshal(frame, &ev); err == nil {
			err = h.service.HandleDeleteRoom(ctx, client, ev)
		}

	case domain.EvtRenameRoom:
		var ev domain.RenameRoomEvent
		if err = json.Unmarshal(frame, &ev); err == nil {
			err = h.service.HandleRenameRoom(ctx, client, ev)
		}

	case domain.EvtGetOnlineCount:
		err = h.service.HandleOnlineCount(ctx, client)

	default:
		lg := logging.L()
		lg.Warn().
			Str(logging.FieldConnID, client.ID()).
			Str(logging.FieldEvent, base.Type).
			Msg("unrecognized event type dropped")
		return
	}

	if err != nil {
		lg := logging.L()
		lg.Error().
			Str(logging.FieldConnID, client.ID()).
			Str(logging.FieldEvent, base.Type).
			Err(err).
			Msg("event handling failed")
	}
}

func (h *WSHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleWebSocket)
}
