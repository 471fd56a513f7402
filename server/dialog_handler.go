package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"KPlayer/core/library"
	"KPlayer/logger"
	"KPlayer/model"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Dialog message types.
const (
	MsgTypeOpen   = "open"
	MsgTypeName   = "name"
	MsgTypeToggle = "toggle"
	MsgTypeSubmit = "submit"
	MsgTypeCancel = "cancel"

	MsgTypeState     = "state"
	MsgTypeNotice    = "notice"
	MsgTypePlaylists = "playlists"
	MsgTypeCreated   = "created"
	MsgTypeError     = "error"
)

// DialogRequest is a message from the browser.
type DialogRequest struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	SongID string `json:"songId,omitempty"`
}

// DialogMessage is a message to the browser.
type DialogMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

var dialogUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// dialogConn serializes writes to one socket.
type dialogConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *dialogConn) send(msgType string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(DialogMessage{Type: msgType, Data: data}); err != nil {
		logger.Debug("dialog write failed", logger.String("type", msgType), logger.ErrorField(err))
	}
}

func (c *dialogConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// CreationDialogHandler drives a playlist creation dialog over a websocket.
// The connection owns a playlist list that is refreshed after every created
// playlist and pushed to the browser.
func (h *APIHandler) CreationDialogHandler(w http.ResponseWriter, r *http.Request) {
	identity, err := GetIdentityFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := dialogUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade WebSocket", logger.String("uid", identity.UID), logger.ErrorField(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// The request context ends with the handshake; the socket gets its own.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &dialogConn{conn: conn}
	list := library.NewPlaylistList(h.loader, h.cfg.PlaylistListLimit)
	unsubscribe := list.Subscribe(func(res library.Result[[]*model.Playlist]) {
		out.send(MsgTypePlaylists, res)
	})
	defer unsubscribe()

	wf := h.newCreationWorkflow(identity.UID,
		library.WithNotifier(library.NotifierFunc(func(n library.Notice) {
			out.send(MsgTypeNotice, n)
		})),
		library.WithOnChange(func(s library.FormSnapshot) {
			out.send(MsgTypeState, s)
		}),
		library.WithOnCreated(func(ctx context.Context, id string) {
			out.send(MsgTypeCreated, map[string]string{"id": id})
			list.Refresh(ctx)
		}),
	)

	logger.Info("creation dialog connected", logger.String("uid", identity.UID))
	list.Refresh(ctx)
	out.send(MsgTypeState, wf.Snapshot())

	done := make(chan struct{})
	go pingLoop(out, done)
	defer close(done)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Warn("dialog socket closed unexpectedly", logger.String("uid", identity.UID), logger.ErrorField(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var req DialogRequest
		if err := json.Unmarshal(message, &req); err != nil {
			out.send(MsgTypeError, "Invalid message format")
			continue
		}
		if err := handleDialogRequest(ctx, wf, out, req); err != nil {
			out.send(MsgTypeError, err.Error())
		}
	}
}

func handleDialogRequest(ctx context.Context, wf *library.CreationWorkflow, out *dialogConn, req DialogRequest) error {
	switch req.Type {
	case MsgTypeOpen:
		wf.Open(ctx)
		return nil
	case MsgTypeName:
		return wf.SetName(req.Name)
	case MsgTypeToggle:
		return wf.ToggleSong(req.SongID)
	case MsgTypeSubmit:
		// Submit runs off the read loop so the socket keeps answering while
		// the write is in flight; a second submit gets ErrSubmitInFlight.
		go func() {
			_, err := wf.Submit(ctx)
			// validation and write failures already produced a notice
			if errors.Is(err, library.ErrSubmitInFlight) || errors.Is(err, library.ErrDialogClosed) {
				out.send(MsgTypeError, err.Error())
			}
		}()
		return nil
	case MsgTypeCancel:
		wf.Cancel()
		return nil
	default:
		return errors.New("unknown message type: " + req.Type)
	}
}

// pingLoop sends periodic pings to keep the connection alive.
func pingLoop(out *dialogConn, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := out.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
