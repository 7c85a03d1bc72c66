// Package httpapi exposes the assistant to browser clients as a small JSON API.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"groceryagent/assistant"
	"groceryagent/inventory"
	"groceryagent/reconcile"
	"groceryagent/recipes"
	"groceryagent/storage"
)

const (
	DefaultAmount = 1.0
	DefaultUnit   = "unit"
)

// RecipeLister lists the local recipe book, optionally filtered by meal type.
type RecipeLister interface {
	ByMealType(ctx context.Context, mealTypes ...string) ([]recipes.Recipe, error)
}

// SavedLists reads back grocery lists kept by a history-keeping sink.
type SavedLists interface {
	Latest(ctx context.Context, name string) (storage.SavedList, error)
	Count(ctx context.Context) (int, error)
}

// Server wires HTTP endpoints to one assistant. The assistant's engine backs the list views.
type Server struct {
	assistant *assistant.Assistant
	engine    *reconcile.Engine
	book      RecipeLister
	saved     SavedLists
}

// New returns a server for a. book may be nil, in which case /api/recipes answers 404.
func New(a *assistant.Assistant, book RecipeLister) *Server {
	return &Server{assistant: a, engine: a.Engine(), book: book}
}

// WithSavedLists enables GET /api/saved-list. Without it the route answers 404.
func (s *Server) WithSavedLists(saved SavedLists) *Server {
	s.saved = saved
	return s
}

// Handler returns the API routes wrapped in permissive CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.chat)
	mux.HandleFunc("GET /api/grocery-list", s.groceryList)
	mux.HandleFunc("GET /api/pantry", s.pantry)
	mux.HandleFunc("POST /api/add-to-cart", s.addToCart)
	mux.HandleFunc("POST /api/clear-list", s.clearList)
	mux.HandleFunc("GET /api/recipes", s.listRecipes)
	mux.HandleFunc("GET /api/saved-list", s.savedList)
	return cors(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP: Listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) {
		err = errors.Join(err, serveErr)
	}
	return err
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	out, err := s.assistant.HandleUtterance(r.Context(), req.Message)
	if errors.Is(err, assistant.ErrEmptyUtterance) {
		writeError(w, http.StatusBadRequest, "Empty message")
		return
	}
	if err != nil {
		slog.Error("HTTP: Failed to handle chat message", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) groceryList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, byName(s.engine.GroceryList()))
}

func (s *Server) pantry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, byName(s.engine.Pantry()))
}

type addToCartRequest struct {
	Item   string   `json:"item"`
	Amount *float64 `json:"amount"`
	Unit   string   `json:"unit"`
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := strings.TrimSpace(req.Item)
	if item == "" {
		writeError(w, http.StatusBadRequest, "Missing item")
		return
	}
	amount := DefaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = DefaultUnit
	}

	if !s.engine.AddToCart(item, amount, unit) {
		writeError(w, http.StatusBadRequest, "Amount must be greater than zero")
		return
	}
	slog.Info("HTTP: Added to cart", "item", item, "amount", amount, "unit", unit)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"grocery_list": byName(s.engine.GroceryList()),
	})
}

func (s *Server) clearList(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearList()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Grocery list cleared",
	})
}

// listRecipes serves the recipe book. Repeat meal_type to match any of several types.
func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	if s.book == nil {
		writeError(w, http.StatusNotFound, "No recipe book configured")
		return
	}
	all, err := s.book.ByMealType(r.Context(), r.URL.Query()["meal_type"]...)
	if err != nil {
		slog.Error("HTTP: Failed to list recipes", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": all})
}

// savedList returns the newest saved copy of ?name (default grocery_list.txt) and the
// total number of saves.
func (s *Server) savedList(w http.ResponseWriter, r *http.Request) {
	if s.saved == nil {
		writeError(w, http.StatusNotFound, "No saved-list history configured")
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = reconcile.DefaultSaveName
	}

	latest, err := s.saved.Latest(r.Context(), name)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No saved list named %s", name))
		return
	}
	if err != nil {
		slog.Error("HTTP: Failed to read saved list", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	count, err := s.saved.Count(r.Context())
	if err != nil {
		slog.Error("HTTP: Failed to count saved lists", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": latest, "count": count})
}

func byName(items []inventory.Item) map[string]inventory.Entry {
	out := make(map[string]inventory.Entry, len(items))
	for _, it := range items {
		out[it.Name] = it.Entry
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("HTTP: Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
