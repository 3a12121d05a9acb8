package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"minesweeper-backend/internal/config"
	"minesweeper-backend/internal/handlers"
	"minesweeper-backend/internal/middleware"
	"minesweeper-backend/internal/minesweeper"
	"minesweeper-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenTTL:     time.Hour,
		HistoryLimit: 10,
	}

	store := services.NewMemoryStore(cfg.HistoryLimit)
	jwtService := services.NewJWTService(cfg)
	gameEngine := services.NewGameEngine(store)
	wsHandler := handlers.NewWebSocketHandler(gameEngine)
	gameEngine.SetBroadcaster(wsHandler)

	authHandler := handlers.NewAuthHandler(store, jwtService)
	gameHandler := handlers.NewGameHandler(gameEngine)

	router := gin.New()
	router.POST("/auth/guest", authHandler.Guest)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtService))
	{
		protected.GET("/me", authHandler.GetCurrentPlayer)
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/ws", wsHandler.HandleWebSocket)

		games := protected.Group("/games")
		{
			games.GET("/presets", gameHandler.GetPresets)
			games.POST("", gameHandler.CreateGame)
			games.GET("/active", gameHandler.GetActiveGames)
			games.GET("/history", gameHandler.GetGameHistory)
			games.GET("/:id", gameHandler.GetGame)
			games.POST("/:id/reveal", gameHandler.Reveal)
			games.POST("/:id/flag", gameHandler.ToggleFlag)
		}
	}

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
		}
	}

	return w, decoded
}

func guestToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/auth/guest", "", gin.H{"display_name": "Tester"})
	if w.Code != http.StatusOK {
		t.Fatalf("guest auth failed: %d %s", w.Code, w.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("guest auth returned no token")
	}
	return token
}

// mineFor reproduces the seeded placement so tests know where the mine is.
func mineFor(t *testing.T, rows, cols, mines int, seed int64) []minesweeper.Point {
	t.Helper()
	board, err := minesweeper.New(rows, cols, mines, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return board.MineLocations()
}

func TestGuestAuthAndMe(t *testing.T) {
	router := newTestRouter(t)
	token := guestToken(t, router)

	w, body := doJSON(t, router, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	player, _ := body["player"].(map[string]interface{})
	if player["display_name"] != "Tester" {
		t.Errorf("unexpected player payload: %v", body)
	}

	w, _ = doJSON(t, router, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestCreateAndWinGameOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := guestToken(t, router)

	const seed = int64(11)
	w, body := doJSON(t, router, http.MethodPost, "/api/games", token,
		gin.H{"rows": 1, "cols": 2, "mines": 1, "seed": seed})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	game, _ := body["game"].(map[string]interface{})
	gameID, _ := game["id"].(string)
	if gameID == "" {
		t.Fatalf("no game id in response: %v", body)
	}
	if game["safe_remaining"].(float64) != 1 {
		t.Errorf("expected 1 safe tile, got %v", game["safe_remaining"])
	}

	mine := mineFor(t, 1, 2, 1, seed)[0]
	safeCol := 1 - mine.Col

	w, body = doJSON(t, router, http.MethodPost, "/api/games/"+gameID+"/reveal", token,
		gin.H{"row": 0, "col": safeCol})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	result, _ := body["result"].(map[string]interface{})
	if result["status"] != "won" {
		t.Errorf("expected won, got %v", result["status"])
	}
	revealed, _ := result["revealed"].([]interface{})
	if len(revealed) != 1 {
		t.Errorf("expected 1 revealed cell, got %v", result["revealed"])
	}

	// Finished game shows up in history, not in the active list.
	w, body = doJSON(t, router, http.MethodGet, "/api/games/active", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if games, _ := body["games"].([]interface{}); len(games) != 0 {
		t.Errorf("expected no active games, got %v", body["games"])
	}

	w, body = doJSON(t, router, http.MethodGet, "/api/games/history", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if games, _ := body["games"].([]interface{}); len(games) != 1 {
		t.Errorf("expected 1 history entry, got %v", body["games"])
	}

	w, _ = doJSON(t, router, http.MethodPost, "/api/games/"+gameID+"/reveal", token,
		gin.H{"row": 0, "col": safeCol})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 revealing a finished game, got %d", w.Code)
	}
}

func TestLossRevealsMines(t *testing.T) {
	router := newTestRouter(t)
	token := guestToken(t, router)

	const seed = int64(3)
	w, body := doJSON(t, router, http.MethodPost, "/api/games", token,
		gin.H{"rows": 3, "cols": 3, "mines": 2, "seed": seed})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	game, _ := body["game"].(map[string]interface{})
	gameID, _ := game["id"].(string)

	mine := mineFor(t, 3, 3, 2, seed)[0]
	w, body = doJSON(t, router, http.MethodPost, "/api/games/"+gameID+"/reveal", token,
		gin.H{"row": mine.Row, "col": mine.Col})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	result, _ := body["result"].(map[string]interface{})
	if result["status"] != "lost" {
		t.Errorf("expected lost, got %v", result["status"])
	}
	mines, _ := result["mines"].([]interface{})
	if len(mines) != 2 {
		t.Errorf("expected both mines in the loss response, got %v", result["mines"])
	}
}

func TestFlagEndpointCycles(t *testing.T) {
	router := newTestRouter(t)
	token := guestToken(t, router)

	w, body := doJSON(t, router, http.MethodPost, "/api/games", token,
		gin.H{"preset": "easy"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	game, _ := body["game"].(map[string]interface{})
	gameID, _ := game["id"].(string)

	for _, want := range []string{"flag", "question", "none"} {
		w, body = doJSON(t, router, http.MethodPost, "/api/games/"+gameID+"/flag", token,
			gin.H{"row": 4, "col": 4})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		result, _ := body["result"].(map[string]interface{})
		if result["annotation"] != want {
			t.Errorf("expected annotation %q, got %v", want, result["annotation"])
		}
	}
}

func TestCreateGameValidation(t *testing.T) {
	router := newTestRouter(t)
	token := guestToken(t, router)

	bad := []gin.H{
		{"rows": 0, "cols": 9, "mines": 10},
		{"rows": 9, "cols": 9, "mines": 81},
		{"preset": "nightmare"},
	}
	for i, req := range bad {
		w, _ := doJSON(t, router, http.MethodPost, "/api/games", token, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("request %d: expected 400, got %d", i, w.Code)
		}
	}
}

func TestRevealErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	token := guestToken(t, router)

	w, _ := doJSON(t, router, http.MethodPost, "/api/games/no_such_game/reveal", token,
		gin.H{"row": 0, "col": 0})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown game, got %d", w.Code)
	}

	w, body := doJSON(t, router, http.MethodPost, "/api/games", token, gin.H{"preset": "easy"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	game, _ := body["game"].(map[string]interface{})
	gameID, _ := game["id"].(string)

	// Coordinate outside the 9x9 board.
	w, _ = doJSON(t, router, http.MethodPost, "/api/games/"+gameID+"/reveal", token,
		gin.H{"row": 9, "col": 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-bounds reveal, got %d", w.Code)
	}

	// Another player's token cannot act on the game.
	intruder := guestToken(t, router)
	w, _ = doJSON(t, router, http.MethodPost, "/api/games/"+gameID+"/reveal", intruder,
		gin.H{"row": 0, "col": 0})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for foreign game, got %d", w.Code)
	}
}

func TestPresetsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := guestToken(t, router)

	w, body := doJSON(t, router, http.MethodGet, "/api/games/presets", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	presets, _ := body["presets"].([]interface{})
	if len(presets) != 3 {
		t.Fatalf("expected 3 presets, got %d", len(presets))
	}
	first, _ := presets[0].(map[string]interface{})
	if first["name"] != "easy" {
		t.Errorf("expected easy first, got %v", first["name"])
	}
}

func TestGetGameReturnsBoardView(t *testing.T) {
	router := newTestRouter(t)
	token := guestToken(t, router)

	w, body := doJSON(t, router, http.MethodPost, "/api/games", token,
		gin.H{"rows": 2, "cols": 2, "mines": 1, "seed": int64(9)})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	game, _ := body["game"].(map[string]interface{})
	gameID, _ := game["id"].(string)

	w, body = doJSON(t, router, http.MethodGet, "/api/games/"+gameID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	board, _ := body["board"].(map[string]interface{})
	if board == nil {
		t.Fatalf("active game should include a board view: %v", body)
	}
	if board["rows"].(float64) != 2 || board["cols"].(float64) != 2 {
		t.Errorf("unexpected board shape: %v", board)
	}
	cells, _ := board["cells"].([]interface{})
	if len(cells) != 2 {
		t.Errorf("expected 2 cell rows, got %d", len(cells))
	}

	msg := fmt.Sprintf("%v", body["game"])
	if msg == "" {
		t.Error("missing game record")
	}
}
