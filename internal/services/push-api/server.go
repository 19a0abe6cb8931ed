package pushapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/levigram/pushgate/internal/domain/notification"
	"github.com/levigram/pushgate/internal/domain/subscription"
	"github.com/levigram/pushgate/internal/obs"
)

// Server is the JSON surface of the subscription registry. Authentication is
// the fronting gateway's job; owner identity arrives via the X-User-ID
// header it injects.
type Server struct {
	log            *zap.Logger
	uc             *Usecase
	vapidPublicKey string
}

func NewServer(log *zap.Logger, uc *Usecase, vapidPublicKey string) *Server {
	return &Server{
		log:            log.With(zap.String("component", "push-api.server")),
		uc:             uc,
		vapidPublicKey: vapidPublicKey,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /subscribe", s.handleSubscribe)
	mux.HandleFunc("POST /unsubscribe", s.handleUnsubscribe)
	mux.HandleFunc("POST /broadcast", s.handleBroadcast)
	mux.HandleFunc("GET /vapid-public-key", s.handleVAPIDKey)
	mux.HandleFunc("GET /broadcasts", s.handleRecentBroadcasts)
	return mux
}

type subscribeRequest struct {
	Endpoint string            `json:"endpoint"`
	Keys     subscription.Keys `json:"keys"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription payload")
		return
	}

	sub := &subscription.Subscription{
		Endpoint: req.Endpoint,
		Keys:     req.Keys,
		OwnerID:  ownerFromHeader(r),
	}
	if err := s.uc.Subscribe(r.Context(), sub); err != nil {
		if errors.Is(err, ErrInvalidSubscription) {
			writeError(w, http.StatusBadRequest, "invalid subscription payload")
			return
		}
		s.fail(w, r, "subscribe", err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "endpoint required")
		return
	}

	if err := s.uc.Unsubscribe(r.Context(), req.Endpoint); err != nil {
		if errors.Is(err, ErrMissingEndpoint) {
			writeError(w, http.StatusBadRequest, "endpoint required")
			return
		}
		s.fail(w, r, "unsubscribe", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type broadcastRequest struct {
	Payload notification.Payload `json:"payload"`
}

type broadcastResponse struct {
	OK        bool `json:"ok"`
	Attempted int  `json:"attempted"`
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	// An empty body means "all defaults"; a malformed one is a client error.
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid broadcast payload")
		return
	}

	rep, err := s.uc.Broadcast(r.Context(), req.Payload)
	if err != nil {
		if errors.Is(err, ErrNoSubscribers) {
			writeError(w, http.StatusNotFound, "no subscriptions")
			return
		}
		s.fail(w, r, "broadcast", err)
		return
	}
	writeJSON(w, http.StatusOK, broadcastResponse{OK: true, Attempted: rep.Attempted})
}

func (s *Server) handleVAPIDKey(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"key": s.vapidPublicKey})
}

func (s *Server) handleRecentBroadcasts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	out, err := s.uc.RecentBroadcasts(r.Context(), limit)
	if err != nil {
		s.fail(w, r, "list broadcasts", err)
		return
	}
	if out == nil {
		out = []*notification.Broadcast{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	obs.WithTrace(r.Context(), s.log).Error(op+" failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func ownerFromHeader(r *http.Request) *int64 {
	v := r.Header.Get("X-User-ID")
	if v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
