package ports

import (
	"context"

	"github.com/foundly/admin-backend/internal/core/domain"
)

// CategoryStat is one row of the per-category reward rollup.
type CategoryStat struct {
	Category       string  `json:"category"`
	TotalPostCount int     `json:"totalPostCount"`
	TotalRewards   float64 `json:"totalRewards"`
	AverageReward  float64 `json:"averageReward"`
}

// PostsStats is the landing dashboard summary.
type PostsStats struct {
	TotalPosts           int            `json:"totalPosts"`
	LostPosts            int            `json:"lostPosts"`
	FoundPosts           int            `json:"foundPosts"`
	PostsLastWeek        int            `json:"postsLastWeek"`
	PostsWithReward      int            `json:"postsWithReward"`
	PostsWithoutReward   int            `json:"postsWithoutReward"`
	PercentageWithReward int            `json:"percentageWithReward"`
	SearchLogsLastWeek   int            `json:"searchLogsLastWeek"`
	ResolvedPosts        int            `json:"resolvedPosts"`
	CategoryStats        []CategoryStat `json:"categoryStats"`
}

type SearchEntry struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Timestamp int64  `json:"timestamp"`
}

type LatestSearches struct {
	LatestSearches     []SearchEntry `json:"latestSearches"`
	SearchLogsLastWeek int           `json:"searchLogsLastWeek"`
}

// GrowthPoint is one day of end-user signups, zero-filled for empty days.
type GrowthPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type UserMetrics struct {
	TotalUsers            int           `json:"totalUsers"`
	TotalPartners         int           `json:"totalPartners"`
	TotalPartnerLocations int           `json:"totalPartnerLocations"`
	UserGrowth            []GrowthPoint `json:"userGrowth"`
}

type AccessCode struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Used        bool    `json:"used"`
	UsedByEmail *string `json:"usedByEmail"`
	CreatedAt   int64   `json:"createdAt"`
}

type AccessCodePage struct {
	AccessCodes []AccessCode `json:"accessCodes"`
	TotalCount  int          `json:"totalCount"`
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
	TotalPages  int          `json:"totalPages"`
}

type CreatedCodes struct {
	Message string   `json:"message"`
	Codes   []string `json:"codes"`
}

// Conversation groups messages by the unordered participant pair and the
// post they concern.
type Conversation struct {
	Participants  []string `json:"participants"`
	PostID        string   `json:"postId"`
	MessageCount  int      `json:"messageCount"`
	LastMessage   string   `json:"lastMessage"`
	LastMessageAt int64    `json:"lastMessageAt"`
}

type RecalculationResult struct {
	Message    string   `json:"message"`
	TotalPosts int      `json:"totalPosts"`
	Categories []string `json:"categories"`
}

// MetricsService computes dashboard aggregates. Every call pulls the full
// relevant collections into memory and derives the summary on the spot;
// nothing except the average-rewards document is ever persisted.
type MetricsService interface {
	PostsStats(ctx context.Context, env domain.Environment) (*PostsStats, error)
	// UserMetrics buckets signups for the explicit (year, month) when both
	// are non-zero, or for a rolling 30-day window otherwise.
	UserMetrics(ctx context.Context, env domain.Environment, year, month int) (*UserMetrics, error)
	AvailableMonths(ctx context.Context, env domain.Environment) ([]string, error)
	LatestSearches(ctx context.Context, env domain.Environment) (*LatestSearches, error)
	Conversations(ctx context.Context, env domain.Environment) ([]Conversation, error)
	AccessCodes(ctx context.Context, env domain.Environment, page, limit int) (*AccessCodePage, error)
	// CreateAccessCodes validates count before any write. A non-empty
	// idempotencyKey that was already seen short-circuits without writing.
	CreateAccessCodes(ctx context.Context, env domain.Environment, count int, createdBy, idempotencyKey string) (*CreatedCodes, error)
	// RecalculateAverageRewards rebuilds the category rollup from all posts
	// and overwrites the aggregate document. Last write wins.
	RecalculateAverageRewards(ctx context.Context, env domain.Environment) (*RecalculationResult, error)
}
