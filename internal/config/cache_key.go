package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a user's active session JTI.
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// AIUsageKey returns the cache key for a user's AI usage counter on a given
// day (day is formatted YYYY-MM-DD, UTC).
func (r *CacheKeyStruct) AIUsageKey(userID, day string) string {
	return fmt.Sprintf("usage:%s:%s", userID, day)
}

// CampaignRedemptionsKey returns the cache key for a campaign's live
// redemption counter.
func (r *CacheKeyStruct) CampaignRedemptionsKey(campaignID string) string {
	return fmt.Sprintf("campaign:%s:redemptions", campaignID)
}

// ThreadEventsChannel returns the Redis PubSub channel name for a thread's
// realtime events (new messages, read receipts, typing).
func (r *CacheKeyStruct) ThreadEventsChannel(threadID string) string {
	return fmt.Sprintf("thread:%s:events", threadID)
}

var CacheKey = NewCacheKeyStruct()
