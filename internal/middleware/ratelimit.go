package middleware

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP)
	GlobalAPIMax        int           // Max requests per minute for all API endpoints
	GlobalAPIExpiration time.Duration // Expiration window

	// Read endpoint limits (per IP) - deck polling is chatty
	ReadMax        int
	ReadExpiration time.Duration

	// Generation limits (per IP) - each request fans out LLM calls
	GenerateMax        int
	GenerateExpiration time.Duration

	// Export limits (per IP) - PDF rendering holds a Chrome instance
	ExportMax        int
	ExportExpiration time.Duration
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 200/min - generous for normal use
		GlobalAPIMax:        200,
		GlobalAPIExpiration: 1 * time.Minute,

		// Reads: 120/min - covers aggressive progress polling
		ReadMax:        120,
		ReadExpiration: 1 * time.Minute,

		// Generation and modification: 10/min (expensive LLM fan-out)
		GenerateMax:        10,
		GenerateExpiration: 1 * time.Minute,

		// Exports: 6/min (headless Chrome renders)
		ExportMax:        6,
		ExportExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig loads config from environment variables with defaults
func LoadRateLimitConfig() *RateLimitConfig {
	config := DefaultRateLimitConfig()

	if v := os.Getenv("RATE_LIMIT_GLOBAL_API"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.GlobalAPIMax = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_READ"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.ReadMax = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_GENERATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.GenerateMax = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_EXPORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.ExportMax = n
		}
	}

	// Development mode: more lenient limits
	if os.Getenv("ENVIRONMENT") == "development" {
		config.GlobalAPIMax = 1000
		config.GenerateMax = 100
		config.ExportMax = 50
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return config
}

// GlobalAPIRateLimiter creates a rate limiter for all API requests
func GlobalAPIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GlobalAPIMax,
		Expiration: config.GlobalAPIExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Global limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests. Please slow down.",
				"retry_after": int(config.GlobalAPIExpiration.Seconds()),
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
	})
}

// ReadRateLimiter for read-only deck endpoints
func ReadRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.ReadMax,
		Expiration: config.ReadExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "read:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Read limit reached for IP: %s on %s", c.IP(), c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests to this endpoint.",
				"retry_after": int(config.ReadExpiration.Seconds()),
			})
		},
	})
}

// GenerateRateLimiter for deck generation and slide modification
func GenerateRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GenerateMax,
		Expiration: config.GenerateExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "generate:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Generation limit reached for IP: %s on %s", c.IP(), c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Generation rate limit reached. Please wait before generating more content.",
				"retry_after": int(config.GenerateExpiration.Seconds()),
			})
		},
	})
}

// ExportRateLimiter for PDF/HTML export requests
func ExportRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.ExportMax,
		Expiration: config.ExportExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "export:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] Export limit reached for IP: %s", c.IP())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many export requests. Please wait.",
				"retry_after": int(config.ExportExpiration.Seconds()),
			})
		},
	})
}
