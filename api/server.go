// Package api はアイテムAPIサーバーの実装を提供します。
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stsysd/itemsvc/config"
	"github.com/stsysd/itemsvc/model"
	"github.com/stsysd/itemsvc/store"
	"go.uber.org/zap"
)

// リクエストボディの上限サイズ
const maxBodyBytes = 1 << 20

// Server はAPIサーバーの構造体です。
type Server struct {
	router  *http.ServeMux
	handler http.Handler
	store   store.ItemStore
	config  *config.Config
	logger  *zap.Logger
	metrics *metrics
}

// ErrorResponse はエラーレスポンスの構造体です。
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeJSON はJSON形式でレスポンスを返却します。
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Error encoding response", zap.Error(err))
	}
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func (s *Server) writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeStoreError はストアのエラーを500として返却します。詳細はログとレスポンスの両方に含めます。
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	s.logStoreError(r, operation, err)
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "Server error",
		Details: err.Error(),
	})
}

// logStoreError はストアのエラーを記録します。
func (s *Server) logStoreError(r *http.Request, operation string, err error) {
	s.metrics.storeErrors.WithLabelValues(operation).Inc()
	s.logger.Error("SQL error",
		zap.String("operation", operation),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err),
	)
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
func NewServer(store store.ItemStore, config *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:  http.NewServeMux(),
		store:   store,
		config:  config,
		logger:  logger,
		metrics: newMetrics(),
	}
	s.routes()
	s.handler = s.requestIDMiddleware(s.instrumentMiddleware(s.router))
	return s
}

// routes はAPIエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	s.router.HandleFunc("GET /{$}", s.handleRoot)

	// 運用系エンドポイントは認証不要
	s.router.HandleFunc("GET /healthz", s.handleHealthCheck)
	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	// Item endpoints
	itemHandler := http.NewServeMux()
	itemHandler.HandleFunc("GET /items", s.handleListItems)
	itemHandler.HandleFunc("POST /items", s.handleCreateItem)
	itemHandler.HandleFunc("GET /items/{id}", s.handleGetItem)
	itemHandler.HandleFunc("PUT /items/{id}", s.handleUpdateItem)
	itemHandler.HandleFunc("DELETE /items/{id}", s.handleDeleteItem)

	// 認証ミドルウェアを適用し、メインルータにマウント
	protected := s.authMiddleware(itemHandler)
	s.router.Handle("/items", protected)
	s.router.Handle("/items/", protected)
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleRoot はルートパスの挨拶を返します。
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "Hello, World!")
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListItems はアイテム一覧を取得するハンドラーです。
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListItems(r.Context())
	if err != nil {
		// 読み取り系はエラー詳細を返さない
		s.logStoreError(r, "list", err)
		s.writeJSONError(w, "Server error", http.StatusInternalServerError)
		return
	}

	// 空配列を返すためにnilチェック
	if items == nil {
		items = []*model.Item{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

// GetItemParams represents parameters for getting an item.
type GetItemParams struct {
	ItemID model.ItemID
	// Valid is false when the path ID is not numeric.
	Valid bool
}

// NewGetItemParams creates parameters for item retrieval from HTTP request.
// A non-numeric ID is not an error here; it simply matches nothing.
func NewGetItemParams(r *http.Request) *GetItemParams {
	id, err := model.ParseItemID(r.PathValue("id"))
	if err != nil {
		return &GetItemParams{}
	}
	return &GetItemParams{ItemID: id, Valid: true}
}

// handleGetItem は特定のIDのアイテムを配列で返すハンドラーです。
// 見つからない場合も404ではなく空配列を返します。
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	params := NewGetItemParams(r)
	if !params.Valid {
		s.writeJSON(w, http.StatusOK, []*model.Item{})
		return
	}

	items, err := s.store.GetItems(r.Context(), params.ItemID)
	if err != nil {
		s.logStoreError(r, "get", err)
		s.writeJSONError(w, "Server error", http.StatusInternalServerError)
		return
	}

	if items == nil {
		items = []*model.Item{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

// CreateItemParams represents parameters for creating an item.
type CreateItemParams struct {
	Payload *model.ItemPayload
	Item    *model.Item
}

// NewCreateItemParams creates parameters for item creation from HTTP request.
// Every required field must be present and truthy.
func NewCreateItemParams(w http.ResponseWriter, r *http.Request) (*CreateItemParams, error) {
	payload, err := readItemPayload(w, r)
	if err != nil {
		return nil, err
	}

	if err := payload.AllRequiredTruthy(); err != nil {
		return nil, err
	}

	item, err := payload.Item(0)
	if err != nil {
		return nil, err
	}

	return &CreateItemParams{Payload: payload, Item: item}, nil
}

// CreateItemResponse はアイテム作成のレスポンスです。
type CreateItemResponse struct {
	Message string                     `json:"message"`
	Item    map[string]json.RawMessage `json:"item"`
}

// handleCreateItem はアイテム作成エンドポイントのハンドラーです。
func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewCreateItemParams(w, r)
	if err != nil {
		s.writeParamsError(w, err)
		return
	}

	// アイテムの保存
	id, err := s.store.CreateItem(r.Context(), params.Item)
	if err != nil {
		if errors.Is(err, model.ErrItemNotCreated) {
			s.logStoreError(r, "create", err)
			s.writeJSONError(w, "Failed to create item", http.StatusInternalServerError)
		} else {
			s.writeStoreError(w, r, "create", err)
		}
		return
	}

	// 送信された内容に採番されたIdを加えて返却
	echo, err := params.Payload.Echo(map[string]any{"Id": id})
	if err != nil {
		s.writeStoreError(w, r, "create", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, CreateItemResponse{
		Message: "Item created successfully",
		Item:    echo,
	})
}

// UpdateItemParams represents parameters for updating an item.
type UpdateItemParams struct {
	ItemID  model.ItemID
	Payload *model.ItemPayload
	Item    *model.Item
}

// NewUpdateItemParams creates parameters for item update from HTTP request.
// The ID is validated first, then the presence of every required key.
// Falsy values are accepted.
func NewUpdateItemParams(w http.ResponseWriter, r *http.Request) (*UpdateItemParams, error) {
	id, err := model.ParseItemID(r.PathValue("id"))
	if err != nil {
		return nil, model.NewValidationError("Invalid ID format")
	}

	payload, err := readItemPayload(w, r)
	if err != nil {
		return nil, err
	}

	if err := payload.HasRequiredKeys(); err != nil {
		return nil, err
	}

	item, err := payload.Item(id.Int64())
	if err != nil {
		return nil, err
	}

	return &UpdateItemParams{ItemID: id, Payload: payload, Item: item}, nil
}

// UpdateItemResponse はアイテム更新のレスポンスです。
type UpdateItemResponse struct {
	Message     string                     `json:"message"`
	UpdatedItem map[string]json.RawMessage `json:"updatedItem"`
}

// handleUpdateItem は特定のIDのアイテムを全置換で更新するハンドラーです。
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewUpdateItemParams(w, r)
	if err != nil {
		s.writeParamsError(w, err)
		return
	}

	// アイテムの更新
	if err := s.store.UpdateItem(r.Context(), params.Item); err != nil {
		if errors.Is(err, model.ErrItemNotFound) {
			s.writeJSONError(w, "Item not found", http.StatusNotFound)
		} else {
			s.writeStoreError(w, r, "update", err)
		}
		return
	}

	// 永続化後の再取得はせず、送信内容をそのまま返す
	echo, err := params.Payload.EchoWithDefaults(map[string]any{"id": params.ItemID.Int64()})
	if err != nil {
		s.writeStoreError(w, r, "update", err)
		return
	}
	s.writeJSON(w, http.StatusOK, UpdateItemResponse{
		Message:     "Item updated successfully",
		UpdatedItem: echo,
	})
}

// DeleteItemParams represents parameters for deleting an item.
type DeleteItemParams struct {
	ItemID model.ItemID
}

// NewDeleteItemParams creates parameters for item deletion from HTTP request.
func NewDeleteItemParams(r *http.Request) (*DeleteItemParams, error) {
	id, err := model.ParseItemID(r.PathValue("id"))
	if err != nil {
		return nil, model.NewValidationError("Invalid ID format")
	}
	return &DeleteItemParams{ItemID: id}, nil
}

// DeleteItemResponse はアイテム削除のレスポンスです。
type DeleteItemResponse struct {
	Message   string `json:"message"`
	DeletedID int64  `json:"deletedId"`
}

// handleDeleteItem は特定のIDのアイテムを削除するハンドラーです。
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	// パラメータを検証
	params, err := NewDeleteItemParams(r)
	if err != nil {
		s.writeParamsError(w, err)
		return
	}

	// アイテムの削除
	if err := s.store.DeleteItem(r.Context(), params.ItemID); err != nil {
		if errors.Is(err, model.ErrItemNotFound) {
			s.writeJSONError(w, "Item not found", http.StatusNotFound)
		} else {
			s.writeStoreError(w, r, "delete", err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, DeleteItemResponse{
		Message:   "Item deleted successfully",
		DeletedID: params.ItemID.Int64(),
	})
}

// writeParamsError はパラメータ検証のエラーをステータスコードに変換して返却します。
func (s *Server) writeParamsError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		s.writeJSONError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	s.writeJSONError(w, err.Error(), http.StatusBadRequest)
}

// readItemPayload はリクエストボディを読み取りItemPayloadに変換します。
// Content-TypeがJSONでない場合、ボディは空オブジェクトとして扱います。
func readItemPayload(w http.ResponseWriter, r *http.Request) (*model.ItemPayload, error) {
	if !isJSONContent(r.Header.Get("Content-Type")) {
		return model.ParseItemPayload(nil)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, model.NewValidationError(fmt.Sprintf("Failed to read request body: %v", err))
	}

	return model.ParseItemPayload(body)
}

// isJSONContent はContent-TypeがJSONを示すかを判定します。
func isJSONContent(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Run はサーバーを指定されたアドレスで起動し、ctxがキャンセルされるとグレースフルに停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := 15 * time.Second
	if s.config != nil && s.config.ShutdownTimeout > 0 {
		timeout = s.config.ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down server", zap.Duration("timeout", timeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
