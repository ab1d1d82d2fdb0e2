package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"dropcover/contexts/token-drops/drop-service/application"
	"dropcover/contexts/token-drops/drop-service/domain/entities"
	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
	"dropcover/contexts/token-drops/drop-service/ports"
	httptransport "dropcover/contexts/token-drops/drop-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateDropHandler(
	ctx context.Context,
	idempotencyKey string,
	userID string,
	req httptransport.CreateDropRequest,
) (httptransport.DropResponse, error) {
	input, err := toCreateDropInput(req)
	if err != nil {
		return httptransport.DropResponse{}, err
	}
	drop, err := h.Service.CreateDrop(ctx, idempotencyKey, userID, input)
	if err != nil {
		return httptransport.DropResponse{}, err
	}
	return httptransport.DropResponse{Status: "success", Data: toDropPayload(drop)}, nil
}

func (h Handler) UpdateDropHandler(
	ctx context.Context,
	userID string,
	dropID string,
	req httptransport.UpdateDropRequest,
) (httptransport.DropResponse, error) {
	input, err := toUpdateDropInput(req)
	if err != nil {
		return httptransport.DropResponse{}, err
	}
	drop, err := h.Service.UpdateDrop(ctx, userID, dropID, input)
	if err != nil {
		return httptransport.DropResponse{}, err
	}
	return httptransport.DropResponse{Status: "success", Data: toDropPayload(drop)}, nil
}

func (h Handler) GetDropHandler(ctx context.Context, dropID string) (httptransport.DropResponse, error) {
	drop, err := h.Service.GetDrop(ctx, dropID)
	if err != nil {
		return httptransport.DropResponse{}, err
	}
	return httptransport.DropResponse{Status: "success", Data: toDropPayload(drop)}, nil
}

func (h Handler) ListActiveDropsHandler(ctx context.Context) (httptransport.DropListResponse, error) {
	drops, err := h.Service.GetActiveDrops(ctx)
	if err != nil {
		return httptransport.DropListResponse{}, err
	}
	return toDropListResponse(drops), nil
}

func (h Handler) ListUpcomingDropsHandler(ctx context.Context) (httptransport.DropListResponse, error) {
	drops, err := h.Service.GetUpcomingDrops(ctx)
	if err != nil {
		return httptransport.DropListResponse{}, err
	}
	return toDropListResponse(drops), nil
}

func (h Handler) ListDropsByNetworkHandler(ctx context.Context, network string) (httptransport.DropListResponse, error) {
	drops, err := h.Service.GetDropsByNetwork(ctx, network)
	if err != nil {
		return httptransport.DropListResponse{}, err
	}
	return toDropListResponse(drops), nil
}

func (h Handler) ListDropsByTokenHandler(ctx context.Context, tokenSymbol string) (httptransport.DropListResponse, error) {
	drops, err := h.Service.GetDropsByToken(ctx, tokenSymbol)
	if err != nil {
		return httptransport.DropListResponse{}, err
	}
	return toDropListResponse(drops), nil
}

func (h Handler) SubscribeHandler(ctx context.Context, userID string, dropID string) (httptransport.SubscriptionAckResponse, error) {
	if err := h.Service.Subscribe(ctx, userID, dropID); err != nil {
		return httptransport.SubscriptionAckResponse{}, err
	}
	resp := httptransport.SubscriptionAckResponse{Status: "success"}
	resp.Data.DropID = strings.TrimSpace(dropID)
	resp.Data.Subscribed = true
	return resp, nil
}

func (h Handler) UnsubscribeHandler(ctx context.Context, userID string, dropID string) (httptransport.SubscriptionAckResponse, error) {
	if err := h.Service.Unsubscribe(ctx, userID, dropID); err != nil {
		return httptransport.SubscriptionAckResponse{}, err
	}
	resp := httptransport.SubscriptionAckResponse{Status: "success"}
	resp.Data.DropID = strings.TrimSpace(dropID)
	resp.Data.Subscribed = false
	return resp, nil
}

func (h Handler) ListMySubscriptionsHandler(ctx context.Context, userID string) (httptransport.DropListResponse, error) {
	drops, err := h.Service.GetMySubscriptions(ctx, userID)
	if err != nil {
		return httptransport.DropListResponse{}, err
	}
	return toDropListResponse(drops), nil
}

func (h Handler) UpdateProfileHandler(
	ctx context.Context,
	userID string,
	req httptransport.UpdateProfileRequest,
) (httptransport.ProfileResponse, error) {
	profile, err := h.Service.CreateOrUpdateProfile(ctx, userID, toProfileUpdateInput(req))
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	return httptransport.ProfileResponse{Status: "success", Data: toProfilePayload(profile)}, nil
}

func (h Handler) GetMyProfileHandler(ctx context.Context, userID string) (httptransport.ProfileResponse, error) {
	profile, err := h.Service.GetMyProfile(ctx, userID)
	if err != nil {
		return httptransport.ProfileResponse{}, err
	}
	return httptransport.ProfileResponse{Status: "success", Data: toProfilePayload(profile)}, nil
}

func (h Handler) ListMyNotificationsHandler(
	ctx context.Context,
	userID string,
	markAsRead bool,
) (httptransport.NotificationListResponse, error) {
	notifications, unread, err := h.Service.GetMyNotifications(ctx, userID, markAsRead)
	if err != nil {
		return httptransport.NotificationListResponse{}, err
	}
	resp := httptransport.NotificationListResponse{Status: "success"}
	resp.Data.Notifications = make([]httptransport.NotificationPayload, 0, len(notifications))
	for _, notification := range notifications {
		resp.Data.Notifications = append(resp.Data.Notifications, toNotificationPayload(notification))
	}
	resp.Data.UnreadCount = unread
	return resp, nil
}

func (h Handler) MarkNotificationReadHandler(
	ctx context.Context,
	userID string,
	notificationID string,
) (httptransport.NotificationResponse, error) {
	notification, err := h.Service.MarkNotificationAsRead(ctx, userID, notificationID)
	if err != nil {
		return httptransport.NotificationResponse{}, err
	}
	return httptransport.NotificationResponse{Status: "success", Data: toNotificationPayload(notification)}, nil
}

func toCreateDropInput(req httptransport.CreateDropRequest) (ports.CreateDropInput, error) {
	startTime, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		return ports.CreateDropInput{}, domainerrors.ErrInvalidDropRequest
	}
	var endTime *time.Time
	if req.EndTime != nil {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.EndTime))
		if err != nil {
			return ports.CreateDropInput{}, domainerrors.ErrInvalidDropRequest
		}
		endTime = &parsed
	}
	return ports.CreateDropInput{
		Name:        req.Name,
		Description: req.Description,
		TokenSymbol: req.TokenSymbol,
		Network:     req.Network,
		TotalSupply: req.TotalSupply,
		Price:       req.Price,
		StartTime:   startTime,
		EndTime:     endTime,
		WebsiteURL:  req.WebsiteURL,
		ImageURL:    req.ImageURL,
	}, nil
}

func toUpdateDropInput(req httptransport.UpdateDropRequest) (ports.UpdateDropInput, error) {
	startTime, err := parseTimeField(req.StartTime)
	if err != nil {
		return ports.UpdateDropInput{}, err
	}
	endTime, err := parseTimeField(req.EndTime)
	if err != nil {
		return ports.UpdateDropInput{}, err
	}
	return ports.UpdateDropInput{
		Name:        req.Name,
		Description: req.Description,
		TokenSymbol: req.TokenSymbol,
		Network:     req.Network,
		TotalSupply: req.TotalSupply,
		Price:       req.Price,
		StartTime:   startTime,
		EndTime:     endTime,
		WebsiteURL:  req.WebsiteURL,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	}, nil
}

func parseTimeField(field ports.Field[string]) (ports.Field[time.Time], error) {
	if !field.Set {
		return ports.Field[time.Time]{}, nil
	}
	if !field.Valid {
		return ports.NullField[time.Time](), nil
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(field.Value))
	if err != nil {
		return ports.Field[time.Time]{}, domainerrors.ErrInvalidDropRequest
	}
	return ports.FieldOf(parsed), nil
}

func toProfileUpdateInput(req httptransport.UpdateProfileRequest) ports.ProfileUpdateInput {
	input := ports.ProfileUpdateInput{
		EmailEnabled: req.EmailEnabled,
		PushEnabled:  req.PushEnabled,
		Email:        req.Email,
	}
	if req.Preference.Set {
		if !req.Preference.Valid {
			input.Preference = ports.NullField[entities.NotificationPreference]()
		} else {
			input.Preference = ports.FieldOf(entities.NotificationPreference{
				Kind:     entities.PreferenceKind(req.Preference.Value.Kind),
				Tokens:   req.Preference.Value.Tokens,
				Networks: req.Preference.Value.Networks,
			})
		}
	}
	return input
}

func toDropPayload(drop entities.TokenDrop) httptransport.DropPayload {
	payload := httptransport.DropPayload{
		DropID:      drop.DropID,
		Name:        drop.Name,
		Description: drop.Description,
		TokenSymbol: drop.TokenSymbol,
		Network:     drop.Network,
		TotalSupply: drop.TotalSupply,
		Price:       drop.Price,
		StartTime:   drop.StartTime.UTC().Format(time.RFC3339),
		WebsiteURL:  drop.WebsiteURL,
		ImageURL:    drop.ImageURL,
		CreatedBy:   drop.CreatedBy,
		CreatedAt:   drop.CreatedAt.UTC().Format(time.RFC3339),
		IsActive:    drop.IsActive,
	}
	if drop.EndTime != nil {
		payload.EndTime = drop.EndTime.UTC().Format(time.RFC3339)
	}
	return payload
}

func toDropListResponse(drops []entities.TokenDrop) httptransport.DropListResponse {
	resp := httptransport.DropListResponse{Status: "success"}
	resp.Data.Drops = make([]httptransport.DropPayload, 0, len(drops))
	for _, drop := range drops {
		resp.Data.Drops = append(resp.Data.Drops, toDropPayload(drop))
	}
	return resp
}

func toProfilePayload(profile entities.UserProfile) httptransport.ProfilePayload {
	return httptransport.ProfilePayload{
		UserID: profile.UserID,
		Preference: httptransport.PreferencePayload{
			Kind:     string(profile.Preference.Kind),
			Tokens:   profile.Preference.Tokens,
			Networks: profile.Preference.Networks,
		},
		EmailEnabled: profile.EmailEnabled,
		PushEnabled:  profile.PushEnabled,
		Email:        profile.Email,
		CreatedAt:    profile.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    profile.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toNotificationPayload(notification entities.Notification) httptransport.NotificationPayload {
	return httptransport.NotificationPayload{
		NotificationID: notification.NotificationID,
		UserID:         notification.UserID,
		DropID:         notification.DropID,
		Title:          notification.Title,
		Message:        notification.Message,
		CreatedAt:      notification.CreatedAt.UTC().Format(time.RFC3339),
		Read:           notification.Read,
	}
}
