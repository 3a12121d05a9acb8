package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"minesweeper-backend/internal/models"
	"minesweeper-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler lets a client play over one connection: REVEAL and FLAG
// requests in, results and GAME_OVER pushes out. It implements
// services.Broadcaster so the engine can push game-over events regardless of
// which transport triggered them.
type WebSocketHandler struct {
	gameEngine *services.GameEngine
	hub        *WebSocketHub
}

type WebSocketHub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	PlayerID string
	Conn     *websocket.Conn

	// Guards Conn writes: the read loop and the hub goroutine both push
	// frames, and gorilla allows only one concurrent writer.
	writeMu sync.Mutex
}

func (c *Client) write(msg *Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(msg)
}

// Message is an outbound frame.
type Message struct {
	Type     string      `json:"type"`
	PlayerID string      `json:"-"`
	GameID   string      `json:"game_id,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// wsRequest is an inbound frame; Data stays raw until the type is known.
type wsRequest struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wsMove struct {
	GameID string `json:"game_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

func NewWebSocketHandler(gameEngine *services.GameEngine) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{
		gameEngine: gameEngine,
		hub:        hub,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	playerID := c.GetString("player_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		PlayerID: playerID,
		Conn:     conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		h.handleRequest(client, &req)
	}
}

func (h *WebSocketHandler) handleRequest(client *Client, req *wsRequest) {
	switch req.Type {
	case "PING":
		h.send(client, &Message{
			Type: "PONG",
			Data: gin.H{"timestamp": time.Now().Unix()},
		})

	case "REVEAL":
		var move wsMove
		if err := json.Unmarshal(req.Data, &move); err != nil {
			h.sendError(client, "", "Malformed REVEAL payload")
			return
		}
		result, err := h.gameEngine.Reveal(context.Background(), client.PlayerID, move.GameID, move.Row, move.Col)
		if err != nil {
			h.sendError(client, move.GameID, err.Error())
			return
		}
		h.send(client, &Message{
			Type:   "REVEAL_RESULT",
			GameID: move.GameID,
			Data:   result,
		})

	case "FLAG":
		var move wsMove
		if err := json.Unmarshal(req.Data, &move); err != nil {
			h.sendError(client, "", "Malformed FLAG payload")
			return
		}
		result, err := h.gameEngine.ToggleFlag(context.Background(), client.PlayerID, move.GameID, move.Row, move.Col)
		if err != nil {
			h.sendError(client, move.GameID, err.Error())
			return
		}
		h.send(client, &Message{
			Type:   "FLAG_RESULT",
			GameID: move.GameID,
			Data:   result,
		})

	default:
		h.sendError(client, "", "Unknown message type: "+req.Type)
	}
}

func (h *WebSocketHandler) send(client *Client, msg *Message) {
	if err := client.write(msg); err != nil {
		log.Printf("Failed to write to WebSocket: %v", err)
	}
}

func (h *WebSocketHandler) sendError(client *Client, gameID, detail string) {
	h.send(client, &Message{
		Type:   "ERROR",
		GameID: gameID,
		Data:   gin.H{"error": detail},
	})
}

// BroadcastGameOver implements services.Broadcaster.
func (h *WebSocketHandler) BroadcastGameOver(playerID string, result *models.RevealResponse) {
	h.hub.broadcast <- &Message{
		Type:     "GAME_OVER",
		PlayerID: playerID,
		GameID:   result.GameID,
		Data:     result,
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.PlayerID] = client
			log.Printf("Client registered: %s", client.PlayerID)

		case client := <-hub.unregister:
			if hub.clients[client.PlayerID] == client {
				delete(hub.clients, client.PlayerID)
				log.Printf("Client unregistered: %s", client.PlayerID)
			}

		case message := <-hub.broadcast:
			hub.deliver(message)
		}
	}
}

func (hub *WebSocketHub) deliver(message *Message) {
	if message.PlayerID != "" {
		if client, ok := hub.clients[message.PlayerID]; ok {
			if err := client.write(message); err != nil {
				log.Printf("Failed to push to %s: %v", message.PlayerID, err)
			}
		}
		return
	}
	for _, client := range hub.clients {
		if err := client.write(message); err != nil {
			log.Printf("Failed to push to %s: %v", client.PlayerID, err)
		}
	}
}
