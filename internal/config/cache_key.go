package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// UserActiveInterviewKey returns the cache key for a user's currently
// active interview session.
func (r *CacheKeyStruct) UserActiveInterviewKey(userID int) string {
	return fmt.Sprintf("user:%d:active_interview", userID)
}

// InterviewEventChannel returns the Redis PubSub channel name on which
// lifecycle events for an interview session are published.
func (r *CacheKeyStruct) InterviewEventChannel(sessionID string) string {
	return fmt.Sprintf("interview:%s:events", sessionID)
}

var CacheKey = NewCacheKeyStruct()
