package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/foundly/admin-backend/internal/core/domain"
	"github.com/foundly/admin-backend/internal/core/ports"
)

// Logical collection names; resolved per environment before every call.
const (
	collPosts            = "Posts"
	collSearchLogs       = "SearchLogs"
	collPartners         = "Partners"
	collPartnerLocations = "PartnerLocations"
	collAccessCodes      = "AccessCodes"
	collMessages         = "Messages"
	collDynamic          = "Dynamic"

	docAverageRewards = "average_rewards"
)

const (
	directoryPageSize   = 1000
	latestSearchesLimit = 10
	conversationsLimit  = 20
	weekMillis          = 7 * 24 * 60 * 60 * 1000
)

// IdempotencyChecker abstracts the replay guard for access-code batches.
type IdempotencyChecker interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// MetricsService derives dashboard aggregates from full collection reads.
// Aggregation is request-scoped and in-memory; the only persisted output is
// the average-rewards document, rewritten wholesale on demand.
type MetricsService struct {
	store     ports.DocumentStore
	directory ports.UserDirectory
	idem      IdempotencyChecker
	log       zerolog.Logger
	now       func() time.Time
}

func NewMetricsService(store ports.DocumentStore, directory ports.UserDirectory, idem IdempotencyChecker, log zerolog.Logger) *MetricsService {
	return &MetricsService{
		store:     store,
		directory: directory,
		idem:      idem,
		log:       log,
		now:       time.Now,
	}
}

// PostsStats fetches posts, search logs, and the rewards aggregate
// concurrently and reduces them into the landing summary.
func (s *MetricsService) PostsStats(ctx context.Context, env domain.Environment) (*ports.PostsStats, error) {
	var (
		wg       sync.WaitGroup
		posts    []domain.Document
		logs     []domain.Document
		rollup   domain.Document
		fetchErr [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		posts, fetchErr[0] = s.store.GetAll(ctx, env.Collection(collPosts))
	}()
	go func() {
		defer wg.Done()
		logs, fetchErr[1] = s.store.GetAll(ctx, env.Collection(collSearchLogs))
	}()
	go func() {
		defer wg.Done()
		rollup, fetchErr[2] = s.store.Get(ctx, env.Collection(collDynamic), docAverageRewards)
	}()
	wg.Wait()

	for _, err := range fetchErr {
		if err != nil {
			return nil, err
		}
	}

	cutoff := s.now().UnixMilli() - weekMillis

	stats := &ports.PostsStats{
		TotalPosts:    len(posts),
		CategoryStats: categoryStatsFromRollup(rollup),
	}
	for _, p := range posts {
		switch p.Text("type") {
		case "Lost":
			stats.LostPosts++
		case "Found":
			stats.FoundPosts++
		}
		if p.Flag("isResolved") {
			stats.ResolvedPosts++
		}
		if domain.HasReward(p["reward"]) {
			stats.PostsWithReward++
		}
		if ms, ok := p.Millis("timestamp"); ok && ms >= cutoff {
			stats.PostsLastWeek++
		}
	}
	stats.PostsWithoutReward = stats.TotalPosts - stats.PostsWithReward
	stats.PercentageWithReward = percentage(stats.PostsWithReward, stats.TotalPosts)
	stats.SearchLogsLastWeek = countSince(logs, "timestamp", cutoff)

	return stats, nil
}

// categoryStatsFromRollup expands the denormalized average-rewards document
// into sorted per-category rows. The average is always re-derived from the
// stored totals, rounded to two decimals.
func categoryStatsFromRollup(rollup domain.Document) []ports.CategoryStat {
	stats := make([]ports.CategoryStat, 0, len(rollup))
	for category, v := range rollup {
		if category == "id" {
			continue
		}
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		count := int(numeric(entry["totalPostCount"]))
		total := numeric(entry["totalRewards"])
		avg := 0.0
		if count > 0 {
			avg = math.Round(total/float64(count)*100) / 100
		}
		stats = append(stats, ports.CategoryStat{
			Category:       category,
			TotalPostCount: count,
			TotalRewards:   total,
			AverageReward:  avg,
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Category < stats[j].Category })
	return stats
}

// LatestSearches returns the ten most recent search logs plus the
// trailing-week count.
func (s *MetricsService) LatestSearches(ctx context.Context, env domain.Environment) (*ports.LatestSearches, error) {
	logs, err := s.store.GetAll(ctx, env.Collection(collSearchLogs))
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UnixMilli() - weekMillis

	type timed struct {
		doc domain.Document
		ms  int64
	}
	withTime := make([]timed, 0, len(logs))
	for _, l := range logs {
		if ms, ok := l.Millis("timestamp"); ok {
			withTime = append(withTime, timed{doc: l, ms: ms})
		}
	}
	sort.Slice(withTime, func(i, j int) bool { return withTime[i].ms > withTime[j].ms })

	n := len(withTime)
	if n > latestSearchesLimit {
		n = latestSearchesLimit
	}
	latest := make([]ports.SearchEntry, 0, n)
	for _, t := range withTime[:n] {
		query := t.doc.Text("searchValue")
		if query == "" {
			query = "N/A"
		}
		latest = append(latest, ports.SearchEntry{
			ID:        t.doc.ID(),
			Query:     query,
			Timestamp: t.ms,
		})
	}

	return &ports.LatestSearches{
		LatestSearches:     latest,
		SearchLogsLastWeek: countSince(logs, "timestamp", cutoff),
	}, nil
}

// UserMetrics combines partner counts with end-user growth. Partner reads
// run concurrently; directory listing is sequential because the provider's
// paging is cursor-based.
func (s *MetricsService) UserMetrics(ctx context.Context, env domain.Environment, year, month int) (*ports.UserMetrics, error) {
	var (
		wg        sync.WaitGroup
		partners  []domain.Document
		locations []domain.Document
		fetchErr  [2]error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		partners, fetchErr[0] = s.store.GetAll(ctx, env.Collection(collPartners))
	}()
	go func() {
		defer wg.Done()
		locations, fetchErr[1] = s.store.GetAll(ctx, env.Collection(collPartnerLocations))
	}()
	wg.Wait()

	for _, err := range fetchErr {
		if err != nil {
			return nil, err
		}
	}

	var windowStart, windowEnd time.Time
	if year != 0 && month != 0 {
		windowStart = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		windowEnd = windowStart.AddDate(0, 1, 0)
	} else {
		windowEnd = s.now().UTC()
		windowStart = windowEnd.Add(-30 * 24 * time.Hour)
	}

	// Zero-fill every calendar day the window touches so the chart has no
	// gaps. The end is exclusive as an instant, but its day still belongs
	// to the series: in rolling mode that day is today, and today's
	// signups must not vanish.
	daily := make(map[string]int)
	lastDay := windowEnd.Add(-time.Nanosecond)
	firstDay := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, time.UTC)
	for d := firstDay; !d.After(lastDay); d = d.AddDate(0, 0, 1) {
		daily[d.Format("2006-01-02")] = 0
	}

	totalUsers := 0
	err := s.eachDirectoryUser(ctx, env, func(u ports.DirectoryUser) {
		totalUsers++
		created := u.CreatedAt.UTC()
		if created.Before(windowStart) || !created.Before(windowEnd) {
			return
		}
		daily[created.Format("2006-01-02")]++
	})
	if err != nil {
		return nil, err
	}

	growth := make([]ports.GrowthPoint, 0, len(daily))
	for date, count := range daily {
		growth = append(growth, ports.GrowthPoint{Date: date, Count: count})
	}
	sort.Slice(growth, func(i, j int) bool { return growth[i].Date < growth[j].Date })

	return &ports.UserMetrics{
		TotalUsers:            totalUsers,
		TotalPartners:         len(partners),
		TotalPartnerLocations: len(locations),
		UserGrowth:            growth,
	}, nil
}

// AvailableMonths lists every YYYY-MM from the earliest signup through the
// current month, ascending, for the growth chart's month picker.
func (s *MetricsService) AvailableMonths(ctx context.Context, env domain.Environment) ([]string, error) {
	var earliest time.Time
	err := s.eachDirectoryUser(ctx, env, func(u ports.DirectoryUser) {
		if earliest.IsZero() || u.CreatedAt.Before(earliest) {
			earliest = u.CreatedAt
		}
	})
	if err != nil {
		return nil, err
	}
	if earliest.IsZero() {
		return []string{}, nil
	}

	months := []string{}
	cursor := time.Date(earliest.UTC().Year(), earliest.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)
	last := s.now().UTC()
	end := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		months = append(months, cursor.Format("2006-01"))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months, nil
}

// eachDirectoryUser walks the full end-user directory page by page, passing
// the cursor forward until the provider reports no more pages.
func (s *MetricsService) eachDirectoryUser(ctx context.Context, env domain.Environment, fn func(ports.DirectoryUser)) error {
	pageToken := ""
	for {
		users, next, err := s.directory.ListUsers(ctx, env, directoryPageSize, pageToken)
		if err != nil {
			return err
		}
		for _, u := range users {
			fn(u)
		}
		if next == "" {
			return nil
		}
		pageToken = next
	}
}

// Conversations groups messages by the unordered sender/receiver pair and
// post, returning the twenty most recently active threads.
func (s *MetricsService) Conversations(ctx context.Context, env domain.Environment) ([]ports.Conversation, error) {
	messages, err := s.store.GetAll(ctx, env.Collection(collMessages))
	if err != nil {
		return nil, err
	}

	type thread struct {
		a, b   string
		postID string
		count  int
		lastMs int64
		last   string
	}
	threads := make(map[string]*thread)

	for _, m := range messages {
		sender := m.Text("senderId")
		receiver := m.Text("receiverId")
		if sender == "" || receiver == "" {
			continue
		}
		a, b := sender, receiver
		if b < a {
			a, b = b, a
		}
		postID := m.Text("postId")
		key := a + "|" + b + "|" + postID

		t, ok := threads[key]
		if !ok {
			t = &thread{a: a, b: b, postID: postID}
			threads[key] = t
		}
		t.count++
		if ms, hasTime := m.Millis("timestamp"); hasTime && ms >= t.lastMs {
			t.lastMs = ms
			t.last = m.Text("text")
		}
	}

	all := make([]*thread, 0, len(threads))
	for _, t := range threads {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].lastMs > all[j].lastMs })
	if len(all) > conversationsLimit {
		all = all[:conversationsLimit]
	}

	out := make([]ports.Conversation, 0, len(all))
	for _, t := range all {
		out = append(out, ports.Conversation{
			Participants:  []string{t.a, t.b},
			PostID:        t.postID,
			MessageCount:  t.count,
			LastMessage:   t.last,
			LastMessageAt: t.lastMs,
		})
	}
	return out, nil
}

// AccessCodes sorts all codes newest-first and slices the requested window.
// A page past the end yields an empty slice, not an error.
func (s *MetricsService) AccessCodes(ctx context.Context, env domain.Environment, page, limit int) (*ports.AccessCodePage, error) {
	docs, err := s.store.GetAll(ctx, env.Collection(collAccessCodes))
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	codes := make([]ports.AccessCode, 0, len(docs))
	for _, d := range docs {
		code := d.Text("code")
		if code == "" {
			code = d.ID()
		}
		var usedBy *string
		if v := d.Text("usedByEmail"); v != "" {
			usedBy = &v
		}
		createdAt, _ := d.Millis("createdAt")
		codes = append(codes, ports.AccessCode{
			ID:          d.ID(),
			Code:        code,
			Used:        d.Flag("used") || d.Flag("isUsed"),
			UsedByEmail: usedBy,
			CreatedAt:   createdAt,
		})
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].CreatedAt > codes[j].CreatedAt })

	total := len(codes)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &ports.AccessCodePage{
		AccessCodes: codes[start:end],
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  (total + limit - 1) / limit,
	}, nil
}

// CreateAccessCodes writes count single-use codes. The bounds check runs
// before any write; a failure mid-loop aborts and leaves the prefix in
// place (no multi-document transaction). A replayed idempotency key
// short-circuits without touching the store.
func (s *MetricsService) CreateAccessCodes(ctx context.Context, env domain.Environment, count int, createdBy, idempotencyKey string) (*ports.CreatedCodes, error) {
	if count < 1 || count > 100 {
		return nil, domain.ErrInvalidCodeCount
	}
	if createdBy == "" {
		createdBy = "admin"
	}

	if idempotencyKey != "" && s.idem != nil {
		seen, err := s.idem.Seen(ctx, idempotencyKey)
		if err != nil {
			s.log.Warn().Err(err).Msg("idempotency check failed, creating anyway")
		} else if seen {
			s.log.Info().Str("idempotency_key", idempotencyKey).Msg("access code batch replayed")
			return &ports.CreatedCodes{Message: "Request already processed", Codes: []string{}}, nil
		}
	}

	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code := generateAccessCode()
		_, err := s.store.Add(ctx, env.Collection(collAccessCodes), map[string]any{
			"code":      code,
			"isUsed":    false,
			"createdAt": s.now().UTC(),
			"createdBy": createdBy,
		})
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	if idempotencyKey != "" && s.idem != nil {
		if err := s.idem.Mark(ctx, idempotencyKey); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", idempotencyKey).Msg("failed to mark idempotency key")
		}
	}

	s.log.Info().Int("count", count).Str("created_by", createdBy).Msg("access codes created")

	return &ports.CreatedCodes{
		Message: fmt.Sprintf("Successfully created %d access code(s)", count),
		Codes:   codes,
	}, nil
}

// RecalculateAverageRewards rebuilds the per-category rollup from every
// post and overwrites the aggregate document. The write is a plain replace:
// concurrent recalculations race harmlessly since the result is idempotent
// for the same post set.
func (s *MetricsService) RecalculateAverageRewards(ctx context.Context, env domain.Environment) (*ports.RecalculationResult, error) {
	posts, err := s.store.GetAll(ctx, env.Collection(collPosts))
	if err != nil {
		return nil, err
	}

	type totals struct {
		count  int
		reward float64
	}
	rollup := make(map[string]*totals)
	for _, p := range posts {
		category, ok := p["category"].(string)
		if !ok || category == "" {
			continue
		}
		t := rollup[category]
		if t == nil {
			t = &totals{}
			rollup[category] = t
		}
		t.count++
		t.reward += domain.RewardAmount(p["reward"])
	}

	doc := make(map[string]any, len(rollup))
	categories := make([]string, 0, len(rollup))
	for category, t := range rollup {
		doc[category] = map[string]any{
			"totalPostCount": t.count,
			"totalRewards":   t.reward,
		}
		categories = append(categories, category)
	}
	sort.Strings(categories)

	if err := s.store.Set(ctx, env.Collection(collDynamic), docAverageRewards, doc, false); err != nil {
		return nil, err
	}

	s.log.Info().Int("total_posts", len(posts)).Int("categories", len(categories)).Msg("average rewards recalculated")

	return &ports.RecalculationResult{
		Message:    "Average rewards recalculated successfully",
		TotalPosts: len(posts),
		Categories: categories,
	}, nil
}

// countSince counts documents whose normalized timestamp under key is at or
// after cutoff; documents without a usable timestamp are skipped.
func countSince(docs []domain.Document, key string, cutoff int64) int {
	n := 0
	for _, d := range docs {
		if ms, ok := d.Millis(key); ok && ms >= cutoff {
			n++
		}
	}
	return n
}

// percentage rounds n/total to a whole percent; 0 when total is 0.
func percentage(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

// numeric widens any bson-decoded number to float64.
func numeric(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case int:
		return float64(t)
	}
	return 0
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateAccessCode returns a six-character invite code.
func generateAccessCode() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// fallback: derive from current nanoseconds
		return fmt.Sprintf("%06X", time.Now().UnixNano()&0xFFFFFF)
	}
	for i, v := range b {
		b[i] = codeAlphabet[int(v)%len(codeAlphabet)]
	}
	return string(b)
}

var _ ports.MetricsService = (*MetricsService)(nil)
