package api

import (
	"encoding/json"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gatherpics/media-ingest/common/config"
)

var requestLimiter *limiter.Limiter

func init() {
	requestLimiter = tollbooth.NewLimiter(0, nil)
	requestLimiter.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	requestLimiter.SetTokenBucketExpirationTTL(time.Hour)

	b, _ := json.Marshal(RateLimitReached())
	requestLimiter.SetMessage(string(b))
	requestLimiter.SetMessageContentType("application/json")
}

func getRequestLimiter() *limiter.Limiter {
	requestLimiter.SetBurst(config.Get().RateLimit.BurstCount)
	requestLimiter.SetMax(config.Get().RateLimit.RequestsPerSecond)

	return requestLimiter
}
