package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type StatusResponse struct {
	Settings        GameSettingsDTO   `json:"settings"`
	Config          Config            `json:"config"`
	Total           int               `json:"total"`
	LastFace        int               `json:"last_face"`
	NextPlayer      int               `json:"next_player"`
	Winner          int               `json:"winner"`
	Status          string            `json:"status"`
	History         []historyEntryDTO `json:"history"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type GameSettingsDTO struct {
	StartTotal  int    `json:"start_total"`
	StartFace   int    `json:"start_face"`
	FirstPlayer int    `json:"first_player"`
	Mode        string `json:"mode"`
}

type apiMove struct {
	Face int `json:"face"`
}

type historyEntryDTO struct {
	Face       int     `json:"face"`
	Player     int     `json:"player"`
	TotalAfter int     `json:"total_after"`
	ElapsedMs  float64 `json:"elapsed_ms"`
	IsAi       bool    `json:"is_ai"`
	Depth      int     `json:"depth"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

type resetPayload struct {
	History         []historyEntryDTO `json:"history"`
	Total           int               `json:"total"`
	LastFace        int               `json:"last_face"`
	NextPlayer      int               `json:"next_player"`
	Winner          int               `json:"winner"`
	Status          string            `json:"status"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type settingsPayload struct {
	Settings GameSettingsDTO `json:"settings"`
	Config   Config          `json:"config"`
}

type evalResponse struct {
	StartTotal  int    `json:"start_total"`
	StartFace   int    `json:"start_face"`
	FirstPlayer int    `json:"first_player"`
	Eval        int    `json:"eval"`
	Nodes       uint64 `json:"nodes"`
	TTStores    uint64 `json:"tt_stores"`
	ElapsedUs   int64  `json:"elapsed_us"`
}

type ttCacheStatusResponse struct {
	Count    int     `json:"count"`
	Capacity int     `json:"capacity"`
	Usage    float64 `json:"usage"`
	Stores   uint64  `json:"stores"`
}

type ttCacheEntriesResponse struct {
	Items  []ttDumpEntry `json:"items"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
	Total  int           `json:"total"`
}

func main() {
	results := NewResultsLog(GetConfig().ResultsLogPath)
	var closeOnce sync.Once
	closeResultsOnShutdown := func(reason string) {
		closeOnce.Do(func() {
			log.Printf("[backend] closing results log on %s", reason)
			sweepRunner.RequestStop()
			results.Close()
		})
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("[backend] panic recovered in main: %v", recovered)
			closeResultsOnShutdown("panic")
		}
	}()
	defer closeResultsOnShutdown("exit")

	controller := NewGameController(DefaultGameSettings())
	hub := NewHub()
	sweepHub := NewSweepHub()
	sweepRunner.SetResultsLog(results)
	sweepRunner.SetHub(sweepHub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx.Done())
	go sweepHub.Run(ctx.Done())
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if controller.Tick() {
					if entry, ok := controller.LatestHistoryEntry(); ok {
						hub.broadcastHistory <- historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}}
					}
					hub.broadcastStatus <- controllerStatus(controller)
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		settings := settingsFromDTO(payload.Settings, DefaultGameSettings())
		controller.StartGame(settings)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		controller.Reset(controller.Settings())
		writeJSON(w, http.StatusOK, controllerStatus(controller))
		hub.broadcastReset <- resetFromController(controller)
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *GameSettingsDTO `json:"settings"`
			Config   *Config          `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if payload.Config != nil {
			configStore.Update(*payload.Config)
			FlushSharedSearchEngine()
		}
		if payload.Settings != nil {
			settings := settingsFromDTO(*payload.Settings, controller.Settings())
			controller.UpdateSettings(settings, false)
		}
		hub.broadcastSettings <- settingsPayload{
			Settings: settingsToDTO(controller.Settings()),
			Config:   GetConfig(),
		}
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		applied, errMsg := controller.ApplyHumanMove(Move{Face: payload.Face})
		if !applied {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
			return
		}
		if entry, ok := controller.LatestHistoryEntry(); ok {
			hub.broadcastHistory <- historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}}
		}
		hub.broadcastStatus <- controllerStatus(controller)
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Get("/api/eval", func(w http.ResponseWriter, r *http.Request) {
		settings, err := evalSettingsFromQuery(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		eval, stats, elapsed := EvaluateStart(settings, GetConfig())
		if err := results.Append(settings.StartFace, settings.FirstPlayer, settings.StartTotal, eval); err != nil {
			log.Printf("[results] append failed: %v", err)
		}
		writeJSON(w, http.StatusOK, evalResponse{
			StartTotal:  settings.StartTotal,
			StartFace:   settings.StartFace,
			FirstPlayer: int(settings.FirstPlayer),
			Eval:        eval,
			Nodes:       stats.Nodes,
			TTStores:    stats.TTStores,
			ElapsedUs:   elapsed.Microseconds(),
		})
	})

	r.Post("/api/sweep", func(w http.ResponseWriter, r *http.Request) {
		jobID, err := sweepRunner.Start(GetConfig())
		if err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
	})
	r.Get("/api/sweep", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sweepRunner.Status())
	})
	r.Delete("/api/sweep", func(w http.ResponseWriter, r *http.Request) {
		sweepRunner.RequestStop()
		writeJSON(w, http.StatusOK, sweepRunner.Status())
	})

	r.Get("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ttCacheStatus())
	})
	r.Delete("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		FlushSharedSearchEngine()
		writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
	})
	r.Get("/api/cache/tt/entries", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}
		if offset < 0 {
			offset = 0
		}
		items, total := SharedSearchEngine().Table().Entries(offset, limit)
		writeJSON(w, http.StatusOK, ttCacheEntriesResponse{
			Items:  items,
			Offset: offset,
			Limit:  limit,
			Total:  total,
		})
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})
	r.Get("/ws/sweep", func(w http.ResponseWriter, r *http.Request) {
		serveSweepWS(sweepHub, w, r)
	})

	server := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Println("backend listening on :8080")
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Printf("[backend] shutdown signal received: %v", sigCtx.Err())
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Printf("[backend] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[backend] graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[backend] forced close failed: %v", closeErr)
		}
	}

	cancel()
	sweepRunner.RequestStop()
	sweepRunner.Wait()
	closeResultsOnShutdown("shutdown")
	if runErr != nil {
		log.Printf("[backend] exiting after server error: %v", runErr)
	}
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		}
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	state := controller.State()
	return StatusResponse{
		Settings:        settingsToDTO(controller.Settings()),
		Config:          GetConfig(),
		Total:           state.Total,
		LastFace:        state.LastMove,
		NextPlayer:      int(state.ToMove),
		Winner:          int(state.Winner),
		Status:          statusToString(controller.Status()),
		History:         historyToDTO(controller.History()),
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func resetFromController(controller *GameController) resetPayload {
	state := controller.State()
	return resetPayload{
		History:         historyToDTO(controller.History()),
		Total:           state.Total,
		LastFace:        state.LastMove,
		NextPlayer:      int(state.ToMove),
		Winner:          int(state.Winner),
		Status:          statusToString(controller.Status()),
		TurnStartedAtMs: controller.CurrentTurnStartedAtMs(),
	}
}

func settingsToDTO(settings GameSettings) GameSettingsDTO {
	return GameSettingsDTO{
		StartTotal:  settings.StartTotal,
		StartFace:   settings.StartFace,
		FirstPlayer: int(settings.FirstPlayer),
		Mode:        settingsMode(settings),
	}
}

func settingsMode(settings GameSettings) string {
	switch {
	case settings.PlayerOneType == PlayerAI && settings.PlayerTwoType == PlayerAI:
		return "ai_vs_ai"
	case settings.PlayerOneType == PlayerHuman && settings.PlayerTwoType == PlayerHuman:
		return "human_vs_human"
	case settings.PlayerOneType == PlayerAI:
		return "human_vs_ai"
	default:
		return "ai_vs_human"
	}
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	if dto.StartTotal != 0 {
		settings.StartTotal = dto.StartTotal
	}
	if dto.StartFace != 0 {
		settings.StartFace = dto.StartFace
	}
	if dto.FirstPlayer != 0 {
		settings.FirstPlayer = PlayerID(dto.FirstPlayer)
	}
	switch dto.Mode {
	case "ai_vs_ai":
		settings.PlayerOneType = PlayerAI
		settings.PlayerTwoType = PlayerAI
	case "human_vs_human":
		settings.PlayerOneType = PlayerHuman
		settings.PlayerTwoType = PlayerHuman
	case "human_vs_ai":
		settings.PlayerOneType = PlayerAI
		settings.PlayerTwoType = PlayerHuman
	case "ai_vs_human":
		settings.PlayerOneType = PlayerHuman
		settings.PlayerTwoType = PlayerAI
	}
	return settings.Normalize()
}

func evalSettingsFromQuery(r *http.Request) (GameSettings, error) {
	settings := GameSettings{
		StartTotal:  66,
		StartFace:   1,
		FirstPlayer: PlayerTwo,
	}
	query := r.URL.Query()
	if raw := query.Get("total"); raw != "" {
		total, err := strconv.Atoi(raw)
		if err != nil || total < minStartTotal || total > maxStartTotal {
			return GameSettings{}, errors.New("total must be an integer in 11..66")
		}
		settings.StartTotal = total
	}
	if raw := query.Get("face"); raw != "" {
		face, err := strconv.Atoi(raw)
		if err != nil || face < minFace || face > maxFace {
			return GameSettings{}, errors.New("face must be an integer in 1..6")
		}
		settings.StartFace = face
	}
	if raw := query.Get("player"); raw != "" {
		player, err := strconv.Atoi(raw)
		if err != nil || (player != int(PlayerOne) && player != int(PlayerTwo)) {
			return GameSettings{}, errors.New("player must be 1 or -1")
		}
		settings.FirstPlayer = PlayerID(player)
	}
	return settings, nil
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		Face:       entry.Move.Face,
		Player:     int(entry.Player),
		TotalAfter: entry.TotalAfter,
		ElapsedMs:  entry.ElapsedMs,
		IsAi:       entry.IsAi,
		Depth:      entry.Move.Depth,
	}
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	out := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyEntryToDTO(entry))
	}
	return out
}

func ttCacheStatus() ttCacheStatusResponse {
	table := SharedSearchEngine().Table()
	count := table.Count()
	capacity := table.Capacity()
	usage := 0.0
	if capacity > 0 {
		usage = float64(count) / float64(capacity)
	}
	return ttCacheStatusResponse{
		Count:    count,
		Capacity: capacity,
		Usage:    usage,
		Stores:   table.Stores(),
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
