// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shopsage-dev/shopsage/internal/shopify"
	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

func storeListOpts() store.ListOpts {
	return store.ListOpts{Limit: 100}
}

// registerAuthRoutes mounts the OAuth endpoints as plain chi handlers.
// They need raw cookies, the unfiltered query string for HMAC
// verification, and cookie writes, which do not fit huma's typed model.
func (s *Server) registerAuthRoutes() {
	s.router.Get("/api/v1/auth/shopify", s.handleBeginAuth)
	s.router.Get("/api/v1/auth/shopify/callback", s.handleAuthCallback)
	s.router.Delete("/api/v1/auth/shopify", s.handleDisconnect)
}

func (s *Server) handleBeginAuth(w http.ResponseWriter, r *http.Request) {
	authURL, state, err := s.services.oauth.BeginAuth(r.URL.Query().Get("shop"))
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     shopify.StateCookie,
		Value:    state,
		Path:     shopify.CallbackPath,
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}

	st, err := s.services.oauth.CompleteCallback(r.Context(), cookies, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	// The nonce is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   shopify.StateCookie,
		Path:   shopify.CallbackPath,
		MaxAge: -1,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Authentication successful",
		"store": map[string]string{
			"id":     st.ID,
			"domain": st.ShopDomain,
		},
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	// No shop parameter matches no store.
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeError(w, ssgerr.New(ssgerr.CodeStoreNotFound, "Store not found"))
		return
	}

	if err := s.services.oauth.Disconnect(r.Context(), shop); err != nil {
		if ssgerr.IsNotFound(err) {
			writeError(w, ssgerr.New(ssgerr.CodeStoreNotFound, "Store not found"))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Store disconnected successfully"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encoding response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := ssgerr.HTTPStatus(err)
	writeJSON(w, status, map[string]string{"error": userMessage(err, status)})
}

// userMessage returns the caller-facing message for err. Server-class
// failures surface a generic message; the detail is logged internally.
func userMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "status", status, "error", err)
		if ssgerr.HasCode(err, ssgerr.CodeOAuthExchangeFailure) {
			return "Authentication failed"
		}
		return "internal server error"
	}
	return err.Error()
}

// registerRoutes mounts the typed question and store endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "create-question",
		Method:        http.MethodPost,
		Path:          "/api/v1/questions",
		Summary:       "Ask a question about a store's data",
		Tags:          []string{"questions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateQuestion)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-question",
		Method:      http.MethodGet,
		Path:        "/api/v1/questions/{id}",
		Summary:     "Get a question",
		Tags:        []string{"questions"},
	}, s.handleGetQuestion)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-questions",
		Method:      http.MethodGet,
		Path:        "/api/v1/questions",
		Summary:     "List a store's questions",
		Tags:        []string{"questions"},
	}, s.handleListQuestions)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-stores",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores",
		Summary:     "List connected stores",
		Tags:        []string{"stores"},
	}, s.handleListStores)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-store",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores/{id}",
		Summary:     "Get a connected store",
		Tags:        []string{"stores"},
	}, s.handleGetStore)

	// Route surface only; behavior is owned by external tooling.
	huma.Register(s.api, huma.Operation{
		OperationID: "update-store",
		Method:      http.MethodPut,
		Path:        "/api/v1/stores/{id}",
		Summary:     "Update a connected store",
		Tags:        []string{"stores"},
	}, s.handleNotImplemented)

	huma.Register(s.api, huma.Operation{
		OperationID: "store-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/stores/{id}/status",
		Summary:     "Store sync status",
		Tags:        []string{"stores"},
	}, s.handleNotImplemented)

	huma.Register(s.api, huma.Operation{
		OperationID: "store-sync",
		Method:      http.MethodPost,
		Path:        "/api/v1/stores/{id}/sync",
		Summary:     "Trigger a store sync",
		Tags:        []string{"stores"},
	}, s.handleNotImplementedPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "analytics-summary",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/summary",
		Summary:     "Analytics summary",
		Tags:        []string{"analytics"},
	}, s.handleAnalyticsStub)

	huma.Register(s.api, huma.Operation{
		OperationID: "analytics-trends",
		Method:      http.MethodGet,
		Path:        "/api/v1/analytics/trends",
		Summary:     "Analytics trends",
		Tags:        []string{"analytics"},
	}, s.handleAnalyticsStub)
}

// --- Request/Response types for huma ---

type createQuestionInput struct {
	Body struct {
		Question struct {
			StoreID  string `json:"store_id" doc:"Shop domain of the connected store"`
			Question string `json:"question" doc:"Natural-language question"`
		} `json:"question"`
	}
}
type questionOutput struct {
	Body QuestionPayload
}

type getQuestionInput struct {
	ID string `path:"id"`
}

type listQuestionsInput struct {
	StoreID string `query:"store_id" doc:"Shop domain to filter by"`
	Page    int    `query:"page" minimum:"0" doc:"Page number, 1-based"`
	PerPage int    `query:"per_page" minimum:"0" maximum:"100" doc:"Page size, default 20"`
}
type listQuestionsOutput struct {
	Body struct {
		Questions []QuestionPayload `json:"questions"`
		Page      int               `json:"page"`
		PerPage   int               `json:"per_page"`
		Total     int64             `json:"total"`
	}
}

type listStoresOutput struct {
	Body struct {
		Stores []StorePayload `json:"stores"`
	}
}

type getStoreInput struct {
	ID string `path:"id"`
}
type getStoreOutput struct {
	Body StorePayload
}

type idInput struct {
	ID string `path:"id"`
}

// --- Handlers ---

func (s *Server) handleCreateQuestion(ctx context.Context, input *createQuestionInput) (*questionOutput, error) {
	q, err := s.services.questions.Ask(ctx, input.Body.Question.StoreID, input.Body.Question.Question)
	if err != nil {
		return nil, humaError(err)
	}
	return &questionOutput{Body: questionPayload(q)}, nil
}

func (s *Server) handleGetQuestion(ctx context.Context, input *getQuestionInput) (*questionOutput, error) {
	q, err := s.services.questions.Get(ctx, input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	return &questionOutput{Body: questionPayload(q)}, nil
}

func (s *Server) handleListQuestions(ctx context.Context, input *listQuestionsInput) (*listQuestionsOutput, error) {
	questions, page, err := s.services.questions.List(ctx, input.StoreID, input.Page, input.PerPage)
	if err != nil {
		return nil, humaError(err)
	}

	out := &listQuestionsOutput{}
	out.Body.Questions = make([]QuestionPayload, len(questions))
	for i, q := range questions {
		out.Body.Questions[i] = questionPayload(q)
	}
	out.Body.Page = page.Page
	out.Body.PerPage = page.PerPage
	out.Body.Total = page.Total
	return out, nil
}

func (s *Server) handleListStores(ctx context.Context, _ *struct{}) (*listStoresOutput, error) {
	stores, err := s.services.stores.List(ctx, storeListOpts())
	if err != nil {
		return nil, humaError(err)
	}

	out := &listStoresOutput{}
	out.Body.Stores = make([]StorePayload, len(stores))
	for i, st := range stores {
		out.Body.Stores[i] = storePayload(st)
	}
	return out, nil
}

func (s *Server) handleGetStore(ctx context.Context, input *getStoreInput) (*getStoreOutput, error) {
	st, err := s.services.stores.GetByID(ctx, input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	return &getStoreOutput{Body: storePayload(st)}, nil
}

func (s *Server) handleNotImplemented(_ context.Context, _ *idInput) (*struct{}, error) {
	return nil, huma.Error501NotImplemented("not implemented")
}

func (s *Server) handleNotImplementedPost(_ context.Context, _ *idInput) (*struct{}, error) {
	return nil, huma.Error501NotImplemented("not implemented")
}

func (s *Server) handleAnalyticsStub(_ context.Context, _ *struct{}) (*struct{}, error) {
	return nil, huma.Error501NotImplemented("not implemented")
}

// humaError converts a service error into a huma status error with the
// caller-facing message.
func humaError(err error) error {
	status := ssgerr.HTTPStatus(err)
	return huma.NewError(status, userMessage(err, status))
}
