// PaperBoxd - Personalized Book Recommendations for Social Reading
// Copyright 2026 Hridyesh (hridyeshh)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hridyeshh/PaperBoxd

package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies user interactions. Events are the only input to the
// preference pipeline; every type listed here may appear in the event log.
type EventType string

// Event type constants.
const (
	EventBookView             EventType = "book_view"
	EventBookSearch           EventType = "book_search"
	EventRatingGiven          EventType = "rating_given"
	EventRatingUpdated        EventType = "rating_updated"
	EventBookLiked            EventType = "book_liked"
	EventBookUnliked          EventType = "book_unliked"
	EventShelfAdd             EventType = "shelf_add"
	EventShelfRemove          EventType = "shelf_remove"
	EventTBRAdd               EventType = "tbr_add"
	EventTBRRemove            EventType = "tbr_remove"
	EventFavoriteAdd          EventType = "favorite_add"
	EventFavoriteRemove       EventType = "favorite_remove"
	EventTopPickAdd           EventType = "top_pick_add"
	EventTopPickRemove        EventType = "top_pick_remove"
	EventCurrentlyReadingAdd  EventType = "currently_reading_add"
	EventReadingFinished      EventType = "reading_finished"
	EventReviewPosted         EventType = "review_posted"
	EventReviewLiked          EventType = "review_liked"
	EventCommentPosted        EventType = "comment_posted"
	EventUserFollowed         EventType = "user_followed"
	EventUserUnfollowed       EventType = "user_unfollowed"
	EventProfileViewed        EventType = "profile_viewed"
	EventRecImpression        EventType = "rec_impression"
	EventRecClick             EventType = "rec_click"
	EventRecConverted         EventType = "rec_converted"
	EventRecDismissed         EventType = "rec_dismissed"
	EventOnboardingCompleted  EventType = "onboarding_completed"
	EventSessionStart         EventType = "session_start"
	EventSessionEnd           EventType = "session_end"
	EventListCreated          EventType = "list_created"
)

// signalBearing holds event types that carry a preference-relevant signal
// and therefore schedule an incremental profile update. Removal events are
// included: they subtract the weight their counterpart added.
var signalBearing = map[EventType]struct{}{
	EventBookView:            {},
	EventBookSearch:          {},
	EventRatingGiven:         {},
	EventRatingUpdated:       {},
	EventBookLiked:           {},
	EventBookUnliked:         {},
	EventShelfAdd:            {},
	EventShelfRemove:         {},
	EventTBRAdd:              {},
	EventTBRRemove:           {},
	EventFavoriteAdd:         {},
	EventFavoriteRemove:      {},
	EventTopPickAdd:          {},
	EventTopPickRemove:       {},
	EventCurrentlyReadingAdd: {},
}

// significant holds event types that invalidate cached recommendations.
var significant = map[EventType]struct{}{
	EventRatingGiven:   {},
	EventRatingUpdated: {},
	EventBookLiked:     {},
	EventShelfAdd:      {},
	EventTBRAdd:        {},
	EventFavoriteAdd:   {},
	EventTopPickAdd:    {},
	EventUserFollowed:  {},
	EventUserUnfollowed: {},
}

// SignalBearing reports whether the event type should trigger an incremental
// profile update.
func (t EventType) SignalBearing() bool {
	_, ok := signalBearing[t]
	return ok
}

// Significant reports whether the event type should mark the user's
// recommendation cache stale.
func (t EventType) Significant() bool {
	_, ok := significant[t]
	return ok
}

// EventMetadata is the variant payload of an event, keyed by event kind.
// Only the fields relevant to the event type are populated.
type EventMetadata struct {
	BookID       string  `json:"book_id,omitempty"`
	Rating       int     `json:"rating,omitempty"`
	Query        string  `json:"query,omitempty"`
	TargetUserID string  `json:"target_user_id,omitempty"`
	Algorithm    string  `json:"algorithm,omitempty"`
	Position     int     `json:"position,omitempty"`
	Page         string  `json:"page,omitempty"`
	GenerationID string  `json:"generation_id,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

// Event is an immutable user-interaction record. Events are created only by
// the tracker and expire from the store after the retention window.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	UserID    string        `json:"user_id"`
	SessionID string        `json:"session_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Metadata  EventMetadata `json:"metadata"`
}

// NewEvent creates an event with a unique ID and the current UTC timestamp.
func NewEvent(t EventType, userID string, meta EventMetadata) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      t,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Metadata:  meta,
	}
}

// Validate checks required fields.
func (e *Event) Validate() error {
	if e.ID == "" {
		return &ValidationError{Field: "id", Message: "required"}
	}
	if e.Type == "" {
		return &ValidationError{Field: "type", Message: "required"}
	}
	if e.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "required"}
	}
	return nil
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
