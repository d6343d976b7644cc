package events

import (
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/trailimage/trailmap/conceptual"
)

type PostPart string

const (
	PostPartTrack  PostPart = "track"
	PostPartPhotos PostPart = "photos"
	// PostPartAll is sent when the whole post is deleted.
	PostPartAll PostPart = "all"
)

type PostUpdated struct {
	Slug conceptual.PostSlug `json:"slug"`
	Part PostPart            `json:"part"`
	At   time.Time           `json:"at"`
}

// PostUpdatedFeed is emitted after a post's track or photos are persisted.
// Anything rendered from the post is stale once this fires.
var PostUpdatedFeed = event.FeedOf[PostUpdated]{}
