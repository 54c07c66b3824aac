package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"github.com/rs/zerolog"

	"mcp-macro-tracker/internal/storage"
)

type Config struct {
	Host   string
	Port   int
	DBPath string
}

type MacroTrackerServer struct {
	server     *server.Server
	httpServer *http.Server
	store      *storage.SQLiteStore
	config     *Config
	log        zerolog.Logger
}

func NewMacroTrackerServer(cfg *Config, log zerolog.Logger) (*MacroTrackerServer, error) {
	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	trackerServer := &MacroTrackerServer{
		store:  store,
		config: cfg,
		log:    log,
	}

	// Create HTTP server with MCP handler
	mux := http.NewServeMux()

	// Create MCP server (without transport, we handle HTTP manually)
	mcpServer, err := server.NewServer(
		nil,
		server.WithServerInfo(protocol.Implementation{
			Name:    "macro-tracker",
			Version: "1.0.0",
		}),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	trackerServer.server = mcpServer
	trackerServer.registerTools()

	mux.HandleFunc("/", trackerServer.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	trackerServer.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return trackerServer, nil
}

func (s *MacroTrackerServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	// Route to the matching tool handler
	var result *protocol.CallToolResult
	var err error

	ctx := r.Context()
	switch request.Name {
	case "set_daily_goals":
		result, err = s.handleSetDailyGoals(ctx, &request)
	case "add_food_to_database":
		result, err = s.handleAddFood(ctx, &request)
	case "lookup_food":
		result, err = s.handleLookupFood(ctx, &request)
	case "log_food_intake":
		result, err = s.handleLogFoodIntake(ctx, &request)
	case "review_meals":
		result, err = s.handleReviewMeals(ctx, &request)
	case "get_database_info":
		result, err = s.handleGetDatabaseInfo(ctx, &request)
	default:
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	if err != nil {
		s.log.Warn().Err(err).Str("tool", request.Name).Msg("tool call failed")
		http.Error(w, err.Error(), statusForError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

// statusForError maps validation and duplicate errors to 400; anything else
// is a storage fault.
func statusForError(err error) int {
	var vErr *storage.ValidationError
	if errors.As(err, &vErr) || errors.Is(err, storage.ErrDuplicateFood) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *MacroTrackerServer) Start(ctx context.Context) error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting macro tracker server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *MacroTrackerServer) Stop() error {
	if s.store != nil {
		s.store.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *MacroTrackerServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
