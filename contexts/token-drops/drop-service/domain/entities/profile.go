package entities

import (
	"time"

	domainerrors "dropcover/contexts/token-drops/drop-service/domain/errors"
)

type PreferenceKind string

const (
	PreferenceAll              PreferenceKind = "all"
	PreferenceSpecificTokens   PreferenceKind = "specific_tokens"
	PreferenceSpecificNetworks PreferenceKind = "specific_networks"
)

func ParsePreferenceKind(value string) (PreferenceKind, error) {
	switch PreferenceKind(value) {
	case PreferenceAll, PreferenceSpecificTokens, PreferenceSpecificNetworks:
		return PreferenceKind(value), nil
	default:
		return "", domainerrors.ErrInvalidProfileRequest
	}
}

// NotificationPreference is a user-level fan-out filter, distinct from
// per-drop subscriptions. Tokens and Networks are only consulted for their
// matching kind.
type NotificationPreference struct {
	Kind     PreferenceKind
	Tokens   []string
	Networks []string
}

// Matches evaluates the fan-out predicate for a drop's token and network.
func (p NotificationPreference) Matches(tokenSymbol string, network string) bool {
	switch p.Kind {
	case PreferenceAll:
		return true
	case PreferenceSpecificTokens:
		return contains(p.Tokens, tokenSymbol)
	case PreferenceSpecificNetworks:
		return contains(p.Networks, network)
	default:
		return false
	}
}

// UserProfile holds notification preferences and contact-channel flags.
// At most one profile exists per user; it is created lazily on the first
// profile-touching call.
type UserProfile struct {
	UserID       string
	Preference   NotificationPreference
	EmailEnabled bool
	PushEnabled  bool
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DefaultProfile is the lazily created profile: everything enabled, no
// contact address, matching every drop.
func DefaultProfile(userID string, now time.Time) UserProfile {
	return UserProfile{
		UserID:       userID,
		Preference:   NotificationPreference{Kind: PreferenceAll},
		EmailEnabled: true,
		PushEnabled:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
