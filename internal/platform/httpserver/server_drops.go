package httpserver

import (
	"errors"
	"net/http"
	"strings"

	dropserrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	dropshttp "dropcover/contexts/token-drops/drop-service/transport/http"
)

func writeDropError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, dropshttp.ErrorResponse{Code: code, Message: message})
}

func writeDropDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dropserrors.ErrDropNotFound),
		errors.Is(err, dropserrors.ErrProfileNotFound),
		errors.Is(err, dropserrors.ErrNotificationNotFound):
		writeDropError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, dropserrors.ErrNoSubscriptions):
		writeDropError(w, http.StatusNotFound, "no_subscriptions", err.Error())
	case errors.Is(err, dropserrors.ErrNotDropCreator),
		errors.Is(err, dropserrors.ErrNotNotificationOwner):
		writeDropError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, dropserrors.ErrInvalidDropRequest),
		errors.Is(err, dropserrors.ErrInvalidProfileRequest),
		errors.Is(err, dropserrors.ErrIdempotencyKeyRequired):
		writeDropError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, dropserrors.ErrDropAlreadyExists),
		errors.Is(err, dropserrors.ErrIdempotencyConflict):
		writeDropError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeDropError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireDropAuthorization(w http.ResponseWriter, r *http.Request) bool {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		writeDropError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return false
	}
	return true
}

func requireDropRequestID(w http.ResponseWriter, r *http.Request) bool {
	if strings.TrimSpace(r.Header.Get("X-Request-Id")) == "" {
		writeDropError(w, http.StatusBadRequest, "missing_request_id", "X-Request-Id header is required")
		return false
	}
	return true
}

func requireDropUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeDropError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func requireDropIdempotencyKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey == "" {
		writeDropError(w, http.StatusBadRequest, "idempotency_key_required", "Idempotency-Key header is required")
		return "", false
	}
	return idempotencyKey, true
}

func (s *Server) handleCreateDrop(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) || !requireDropRequestID(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}
	idempotencyKey, ok := requireDropIdempotencyKey(w, r)
	if !ok {
		return
	}

	var req dropshttp.CreateDropRequest
	if !s.decodeJSON(w, r, &req, writeDropError) {
		return
	}
	resp, err := s.drops.Handler.CreateDropHandler(r.Context(), idempotencyKey, userID, req)
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateDrop(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) || !requireDropRequestID(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}

	var req dropshttp.UpdateDropRequest
	if !s.decodeJSON(w, r, &req, writeDropError) {
		return
	}
	resp, err := s.drops.Handler.UpdateDropHandler(r.Context(), userID, r.PathValue("drop_id"), req)
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetDrop(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) {
		return
	}

	resp, err := s.drops.Handler.GetDropHandler(r.Context(), r.PathValue("drop_id"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListActiveDrops(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) {
		return
	}

	resp, err := s.drops.Handler.ListActiveDropsHandler(r.Context())
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListUpcomingDrops(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) {
		return
	}

	resp, err := s.drops.Handler.ListUpcomingDropsHandler(r.Context())
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDropsByNetwork(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) {
		return
	}

	resp, err := s.drops.Handler.ListDropsByNetworkHandler(r.Context(), r.PathValue("network"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDropsByToken(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) {
		return
	}

	resp, err := s.drops.Handler.ListDropsByTokenHandler(r.Context(), r.PathValue("token_symbol"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) || !requireDropRequestID(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}

	resp, err := s.drops.Handler.SubscribeHandler(r.Context(), userID, r.PathValue("drop_id"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) || !requireDropRequestID(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}

	resp, err := s.drops.Handler.UnsubscribeHandler(r.Context(), userID, r.PathValue("drop_id"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMySubscriptions(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}

	resp, err := s.drops.Handler.ListMySubscriptionsHandler(r.Context(), userID)
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) || !requireDropRequestID(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}

	var req dropshttp.UpdateProfileRequest
	if !s.decodeJSON(w, r, &req, writeDropError) {
		return
	}
	resp, err := s.drops.Handler.UpdateProfileHandler(r.Context(), userID, req)
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}

	resp, err := s.drops.Handler.GetMyProfileHandler(r.Context(), userID)
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMyNotifications(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}

	markAsRead := strings.EqualFold(r.URL.Query().Get("mark_as_read"), "true")
	resp, err := s.drops.Handler.ListMyNotificationsHandler(r.Context(), userID, markAsRead)
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if !requireDropAuthorization(w, r) || !requireDropRequestID(w, r) {
		return
	}
	userID, ok := requireDropUser(w, r)
	if !ok {
		return
	}

	resp, err := s.drops.Handler.MarkNotificationReadHandler(r.Context(), userID, r.PathValue("notification_id"))
	if err != nil {
		writeDropDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
