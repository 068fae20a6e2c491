package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"questlogAPI/internal/activity"
	"questlogAPI/internal/apperr"
	"questlogAPI/internal/cache"
	"questlogAPI/internal/progression"
	"questlogAPI/internal/stats"
)

const maxActivityDuration = 24 * 60

type ActivityService struct {
	db         *pgxpool.Pool
	cache      *cache.Cache
	xp         progression.XPStrategy
	users      *UserService
	challenges *ChallengeService
}

// The operative formula is linear (1 XP per minute); MultiplierStrategy
// stays available as the pluggable alternate.
func NewActivityService(db *pgxpool.Pool, queryCache *cache.Cache, users *UserService, challenges *ChallengeService) *ActivityService {
	return &ActivityService{
		db:         db,
		cache:      queryCache,
		xp:         progression.LinearStrategy{},
		users:      users,
		challenges: challenges,
	}
}

type SubmitActivityResult struct {
	Activity    *activity.Activity `json:"activity"`
	XPEarned    int                `json:"xpEarned"`
	UpdatedUser *stats.UserStats   `json:"updatedUser"`
	NewLevel    int                `json:"newLevel,omitempty"`
}

// SubmitActivity records an activity, credits the earned XP to the user's
// progression and refreshes the daily streak. Challenge recomputation runs
// afterwards on a best-effort basis so a scoring failure never loses the
// logged activity.
func (s *ActivityService) SubmitActivity(ctx context.Context, userID uuid.UUID, a *activity.Activity) (*SubmitActivityResult, error) {
	a.Type = strings.ToUpper(strings.TrimSpace(a.Type))
	a.Intensity = activity.Intensity(strings.ToUpper(strings.TrimSpace(string(a.Intensity))))

	if a.Type == "" {
		return nil, fmt.Errorf("activity type is required: %w", apperr.ErrValidation)
	}
	if a.Duration <= 0 || a.Duration > maxActivityDuration {
		return nil, fmt.Errorf("duration must be between 1 and %d minutes: %w", maxActivityDuration, apperr.ErrValidation)
	}
	switch a.Intensity {
	case "", activity.IntensityLow, activity.IntensityMedium, activity.IntensityHigh:
	default:
		return nil, fmt.Errorf("unknown intensity %q: %w", a.Intensity, apperr.ErrValidation)
	}
	if a.Intensity == "" {
		a.Intensity = activity.IntensityMedium
	}

	a.ID = uuid.New()
	a.UserID = userID
	a.XPEarned = s.xp.ActivityXP(a.Type, string(a.Intensity), a.Duration)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO activities (id, user_id, type, title, duration, intensity, xp_earned, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query, a.ID, a.UserID, a.Type, a.Title, a.Duration, string(a.Intensity), a.XPEarned, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}

	state, newLevel, err := s.users.CreditXP(ctx, userID, a.XPEarned)
	if err != nil {
		return nil, fmt.Errorf("failed to credit activity xp: %w", err)
	}

	streak, err := s.users.TouchStreak(ctx, userID, a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	s.cache.InvalidateActivities(userID.String())

	if err := s.challenges.RecomputeForUser(ctx, userID); err != nil {
		log.Printf("SubmitActivity: challenge recompute failed for user %s: %v", userID, err)
	}

	return &SubmitActivityResult{
		Activity: a,
		XPEarned: a.XPEarned,
		UpdatedUser: &stats.UserStats{
			Level:       state.Level,
			XP:          state.XP,
			TotalXP:     state.TotalXP,
			StreakCount: streak,
		},
		NewLevel: newLevel,
	}, nil
}

// ListActivities returns a filtered, sorted page of the user's activities.
// Pages are cached per distinct option set.
func (s *ActivityService) ListActivities(ctx context.Context, userID uuid.UUID, opts activity.ListOptions) (*activity.Page, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 || opts.Limit > 100 {
		opts.Limit = 20
	}

	sortBy := "created_at"
	switch opts.SortBy {
	case "", "date":
	case "duration":
		sortBy = "duration"
	case "xp":
		sortBy = "xp_earned"
	default:
		return nil, fmt.Errorf("unknown sort field %q: %w", opts.SortBy, apperr.ErrValidation)
	}
	sortOrder := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	startKey := ""
	if opts.StartDate != nil {
		startKey = opts.StartDate.Format("2006-01-02")
	}
	cacheKey := cache.Key("activities", userID.String(),
		fmt.Sprint(opts.Page), fmt.Sprint(opts.Limit), opts.Category, startKey, sortBy, sortOrder)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*activity.Page), nil
	}

	s.cache.StartQuery("listActivities")
	defer func() {
		duration := s.cache.EndQuery("listActivities")
		log.Printf("ListActivities: query completed in %s", duration)
	}()

	where := []string{"user_id = $1"}
	args := []any{userID}
	if opts.Category != "" {
		args = append(args, strings.ToUpper(opts.Category))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if opts.StartDate != nil {
		args = append(args, *opts.StartDate)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM activities WHERE %s`, whereClause)
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count activities: %w", err)
	}

	offset := (opts.Page - 1) * opts.Limit
	args = append(args, opts.Limit, offset)
	listQuery := fmt.Sprintf(`
	SELECT id, user_id, type, title, duration, intensity, xp_earned, created_at
	FROM activities
	WHERE %s
	ORDER BY %s %s
	LIMIT $%d OFFSET $%d
	`, whereClause, sortBy, sortOrder, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []*activity.Activity{}
	for rows.Next() {
		a := &activity.Activity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Title, &a.Duration, &a.Intensity, &a.XPEarned, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	pages := (total + opts.Limit - 1) / opts.Limit
	page := &activity.Page{
		Activities: activities,
		Pagination: activity.Pagination{
			Page:    opts.Page,
			Limit:   opts.Limit,
			Total:   total,
			Pages:   pages,
			HasNext: opts.Page < pages,
			HasPrev: opts.Page > 1,
		},
	}

	s.cache.Set(cacheKey, page, cache.ActivityListTTL, cache.ActivityTag(userID.String()))
	return page, nil
}

// GetAggregateStats returns whole-history totals and the set of categories
// the user has logged, cached with the longest TTL since the result changes
// slowly relative to its cost.
func (s *ActivityService) GetAggregateStats(ctx context.Context, userID uuid.UUID) (*activity.AggregateStats, error) {
	cacheKey := cache.Key("activity_stats", userID.String())
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*activity.AggregateStats), nil
	}

	s.cache.StartQuery("activityStats")
	defer func() {
		duration := s.cache.EndQuery("activityStats")
		log.Printf("GetAggregateStats: query completed in %s", duration)
	}()

	agg := &activity.AggregateStats{Categories: []string{}}

	query := `
	SELECT type, COUNT(*), COALESCE(SUM(xp_earned), 0)
	FROM activities
	WHERE user_id = $1
	GROUP BY type
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count, xp int
		if err := rows.Scan(&category, &count, &xp); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		agg.Categories = append(agg.Categories, category)
		agg.TotalActivities += count
		agg.TotalXP += xp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}
	sort.Strings(agg.Categories)

	if agg.TotalActivities > 0 {
		agg.AvgXP = float64(agg.TotalXP) / float64(agg.TotalActivities)
	}

	s.cache.Set(cacheKey, agg, cache.AggregateTTL, cache.ActivityTag(userID.String()))
	return agg, nil
}

// GetRecentActivities returns the newest activities with a short TTL so
// dashboards stay close to live without hitting the table on every poll.
func (s *ActivityService) GetRecentActivities(ctx context.Context, userID uuid.UUID, limit int) ([]*activity.Activity, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	cacheKey := cache.Key("recent_activities", userID.String(), fmt.Sprint(limit))
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]*activity.Activity), nil
	}

	query := `
	SELECT id, user_id, type, title, duration, intensity, xp_earned, created_at
	FROM activities
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent activities: %w", err)
	}
	defer rows.Close()

	activities := []*activity.Activity{}
	for rows.Next() {
		a := &activity.Activity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Title, &a.Duration, &a.Intensity, &a.XPEarned, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent activities: %w", err)
	}

	s.cache.Set(cacheKey, activities, cache.RecentTTL, cache.ActivityTag(userID.String()))
	return activities, nil
}

// loadAllActivities fetches a user's full history in chronological order
// for achievement evaluation and challenge scoring.
func loadAllActivities(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) ([]*activity.Activity, error) {
	query := `
	SELECT id, user_id, type, title, duration, intensity, xp_earned, created_at
	FROM activities
	WHERE user_id = $1
	ORDER BY created_at ASC
	`
	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity history: %w", err)
	}
	defer rows.Close()

	activities := []*activity.Activity{}
	for rows.Next() {
		a := &activity.Activity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Title, &a.Duration, &a.Intensity, &a.XPEarned, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity history: %w", err)
	}

	return activities, nil
}
