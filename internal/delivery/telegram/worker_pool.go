package telegram

import (
	"context"
	"log"
	"sync"
	"time"
)

// queryRequest is one user query waiting for a worker.
type queryRequest struct {
	ctx       context.Context
	userID    int64
	username  string
	chatID    int64
	messageID int
	text      string
}

// workerPool processes queries in parallel with per-user rate limiting.
// Every query costs at least one upstream HTTP round trip, so handling
// them inline on the update loop would stall the bot for everyone.
type workerPool struct {
	requestQueue chan *queryRequest
	workerCount  int
	handler      *BotHandler
	wg           sync.WaitGroup

	rateLimiter   map[int64]*userRateLimit
	rateLimiterMu sync.RWMutex
}

type userRateLimit struct {
	lastRequest  time.Time
	requestCount int
	mu           sync.Mutex
}

const (
	maxRequestsPerSecond   = 3
	requestQueueSize       = 100
	defaultWorkerCount     = 20
	queryTimeout           = 45 * time.Second
	rateLimiterCleanupTime = 5 * time.Minute
	rateLimiterMaxIdleTime = 10 * time.Minute
	maxRateLimitersInCache = 10000
)

func newWorkerPool(handler *BotHandler, workerCount int) *workerPool {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &workerPool{
		requestQueue: make(chan *queryRequest, requestQueueSize),
		workerCount:  workerCount,
		handler:      handler,
		rateLimiter:  make(map[int64]*userRateLimit),
	}
}

func (wp *workerPool) start(ctx context.Context) {
	log.Printf("Starting %d workers for parallel query processing", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
	go wp.cleanupRateLimits(ctx)
}

func (wp *workerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		case req, ok := <-wp.requestQueue:
			if !ok {
				log.Printf("Worker %d shutting down (queue closed)", id)
				return
			}
			if req == nil {
				continue
			}

			if !wp.checkRateLimit(req.userID) {
				wp.handler.sendAutoDelete(req.chatID, "⚠️ 查詢太頻繁了,稍等一下再試。")
				continue
			}

			wp.processWithTimeout(req)
		}
	}
}

func (wp *workerPool) processWithTimeout(req *queryRequest) {
	ctx, cancel := context.WithTimeout(req.ctx, queryTimeout)
	defer cancel()

	if wp.handler == nil {
		log.Printf("worker pool: handler is nil, skipping request user=%d", req.userID)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in query processing for user %d: %v", req.userID, r)
			wp.handler.sendAutoDelete(req.chatID, "⚠️ 查詢時發生內部錯誤,請再試一次。")
		}
	}()

	wp.handler.processQuery(ctx, req)
}

func (wp *workerPool) checkRateLimit(userID int64) bool {
	wp.rateLimiterMu.Lock()
	defer wp.rateLimiterMu.Unlock()

	limiter, exists := wp.rateLimiter[userID]
	if !exists {
		wp.rateLimiter[userID] = &userRateLimit{
			lastRequest:  time.Now(),
			requestCount: 1,
		}
		return true
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := time.Now()
	if now.Sub(limiter.lastRequest) >= time.Second {
		limiter.requestCount = 1
		limiter.lastRequest = now
		return true
	}
	if limiter.requestCount >= maxRequestsPerSecond {
		log.Printf("Rate limit exceeded for user %d", userID)
		return false
	}
	limiter.requestCount++
	return true
}

// cleanupRateLimits removes idle entries so the map does not grow with
// every user the bot has ever seen.
func (wp *workerPool) cleanupRateLimits(ctx context.Context) {
	ticker := time.NewTicker(rateLimiterCleanupTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			var toDelete []int64

			wp.rateLimiterMu.RLock()
			cacheSize := len(wp.rateLimiter)
			for userID, limiter := range wp.rateLimiter {
				limiter.mu.Lock()
				if now.Sub(limiter.lastRequest) > rateLimiterMaxIdleTime {
					toDelete = append(toDelete, userID)
				}
				limiter.mu.Unlock()
			}
			wp.rateLimiterMu.RUnlock()

			if len(toDelete) > 0 {
				wp.rateLimiterMu.Lock()
				for _, userID := range toDelete {
					delete(wp.rateLimiter, userID)
				}
				wp.rateLimiterMu.Unlock()
				log.Printf("Cleaned up %d inactive rate limiters (total: %d -> %d)", len(toDelete), cacheSize, cacheSize-len(toDelete))
			}

			if cacheSize > maxRateLimitersInCache {
				wp.evictOldestRateLimiters(cacheSize - maxRateLimitersInCache)
			}
		}
	}
}

func (wp *workerPool) evictOldestRateLimiters(count int) {
	type userTime struct {
		userID      int64
		lastRequest time.Time
	}

	wp.rateLimiterMu.RLock()
	users := make([]userTime, 0, len(wp.rateLimiter))
	for userID, limiter := range wp.rateLimiter {
		limiter.mu.Lock()
		users = append(users, userTime{userID: userID, lastRequest: limiter.lastRequest})
		limiter.mu.Unlock()
	}
	wp.rateLimiterMu.RUnlock()

	for i := 0; i < len(users)-1; i++ {
		for j := i + 1; j < len(users); j++ {
			if users[i].lastRequest.After(users[j].lastRequest) {
				users[i], users[j] = users[j], users[i]
			}
		}
	}

	wp.rateLimiterMu.Lock()
	deleted := 0
	for i := 0; i < len(users) && deleted < count; i++ {
		delete(wp.rateLimiter, users[i].userID)
		deleted++
	}
	wp.rateLimiterMu.Unlock()

	if deleted > 0 {
		log.Printf("Evicted %d oldest rate limiters to prevent memory leak", deleted)
	}
}

func (wp *workerPool) submit(req *queryRequest) bool {
	select {
	case wp.requestQueue <- req:
		return true
	default:
		log.Printf("Worker pool queue is full (%d/%d), rejecting request from user %d", len(wp.requestQueue), requestQueueSize, req.userID)
		wp.handler.sendAutoDelete(req.chatID, "⚠️ 機器人現在很忙,請稍後再試。")
		return false
	}
}

func (wp *workerPool) shutdown() {
	log.Printf("Shutting down worker pool, %d messages in queue", len(wp.requestQueue))
	close(wp.requestQueue)
	wp.wg.Wait()
	log.Println("Worker pool shut down successfully")
}
