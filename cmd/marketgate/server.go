package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxRequestBody = 1 << 20 // 1 MiB

const (
	scopeMarketWrite = "market:write"
	scopeTrade       = "trade"
	scopeRead        = "read"
)

// Server is the REST facade in front of the marketd JSON-RPC endpoint. It
// translates resource-style routes into node method calls and relays the
// node's result or error verbatim.
type Server struct {
	node *NodeClient
	auth *Authenticator
	log  *slog.Logger
}

func NewServer(node *NodeClient, auth *Authenticator, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{node: node, auth: auth, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(v1 chi.Router) {
		v1.Group(func(read chi.Router) {
			read.Use(s.auth.Middleware(scopeRead))
			read.Get("/marketplaces/{id}", s.forwardByID("market_get"))
			read.Get("/products/{id}", s.forwardByID("catalog_get"))
			read.Get("/payments/{id}", s.forwardByID("escrow_get"))
			read.Post("/rewards/balance", s.forward("rewards_balance"))
			read.Post("/balances", s.forward("bank_balance"))
			read.Post("/credentials", s.forward("credential_balance"))
			read.Get("/assets", s.forwardNoParams("asset_list"))
		})

		v1.Group(func(market chi.Router) {
			market.Use(s.auth.Middleware(scopeMarketWrite))
			market.Post("/marketplaces", s.forward("market_create"))
			market.Put("/marketplaces", s.forward("market_update"))
			market.Post("/products", s.forward("catalog_create"))
			market.Patch("/products", s.forward("catalog_update"))
			market.Delete("/products", s.forward("catalog_delete"))
			market.Post("/access/accept", s.forward("access_accept"))
			market.Post("/rewards/bounty", s.forward("rewards_fundBounty"))
		})

		v1.Group(func(trade chi.Router) {
			trade.Use(s.auth.Middleware(scopeTrade))
			trade.Post("/access/requests", s.forward("access_request"))
			trade.Post("/purchases", s.forward("settlement_purchase"))
			trade.Post("/payments/refund", s.forward("escrow_refund"))
			trade.Post("/payments/withdraw", s.forward("escrow_withdraw"))
			trade.Post("/rewards/init", s.forward("rewards_init"))
			trade.Post("/rewards/withdraw", s.forward("rewards_withdraw"))
		})
	})

	return r
}

// forward relays the request body as the node method's parameter object.
func (s *Server) forward(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, errors.New("failed to read request body"))
			return
		}
		var params map[string]interface{}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &params); err != nil {
				s.writeError(w, http.StatusBadRequest, errors.New("request body must be a JSON object"))
				return
			}
		} else {
			params = map[string]interface{}{}
		}
		s.call(w, r, method, params)
	}
}

// forwardByID turns a path id into the node method's single parameter.
func (s *Server) forwardByID(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			s.writeError(w, http.StatusBadRequest, errors.New("id required"))
			return
		}
		s.call(w, r, method, map[string]interface{}{"id": id})
	}
}

func (s *Server) forwardNoParams(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.call(w, r, method, nil)
	}
}

func (s *Server) call(w http.ResponseWriter, r *http.Request, method string, params interface{}) {
	var result json.RawMessage
	if err := s.node.Call(r.Context(), method, params, &result); err != nil {
		var rpcErr *jsonRPCError
		if errors.As(err, &rpcErr) {
			s.writeRPCError(w, rpcErr)
			return
		}
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if len(result) == 0 {
		result = json.RawMessage(`null`)
	}
	_ = json.NewEncoder(w).Encode(map[string]json.RawMessage{"result": result})
}

func (s *Server) writeRPCError(w http.ResponseWriter, rpcErr *jsonRPCError) {
	status := http.StatusBadGateway
	switch rpcErr.Code {
	case -32602, -32600, -32700:
		status = http.StatusBadRequest
	case -32601:
		status = http.StatusNotFound
	case -32004:
		status = http.StatusNotFound
	case -32003, -32001:
		status = http.StatusForbidden
	case -32009:
		status = http.StatusConflict
	case -32020:
		status = http.StatusTooManyRequests
	}
	s.writeError(w, status, rpcErr)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// requestID tags every request with a correlation id for log stitching.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"requestId", w.Header().Get("X-Request-Id"),
			"duration", time.Since(start).String(),
		)
	})
}
