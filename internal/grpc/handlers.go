package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pb "github.com/godilite/call-insights/api/v1"
	"github.com/godilite/call-insights/internal/domain"
	"github.com/godilite/call-insights/internal/scoring"
	"github.com/godilite/call-insights/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	syncTimeout          = 10 * time.Minute
)

// CacheKeyPrefix starts every key the handlers cache. Deleting it drops all
// cached reports.
const CacheKeyPrefix = "grpc:"

type CacheKeyType string

const (
	cacheKeyCampaignMetrics CacheKeyType = "grpc:campaign_metrics"
	cacheKeyAgentMetrics    CacheKeyType = "grpc:agent_metrics"
	cacheKeyOverallScore    CacheKeyType = "grpc:overall_quality_score"
	cacheKeyPeriodChange    CacheKeyType = "grpc:period_over_period_score_change"
	cacheKeyScoreTrend      CacheKeyType = "grpc:score_trend"
)

type GRPCHandlers struct {
	pb.UnimplementedCallAnalyticsServer
	analytics AnalyticsService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. A nil cache disables caching.
func NewGRPCHandlers(analytics AnalyticsService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if analytics == nil {
		panic("nil AnalyticsService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &GRPCHandlers{
		analytics: analytics,
		cache:     cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
	}
}

func (s *GRPCHandlers) parseAndValidate(req *pb.TimePeriodRequest) (start, end time.Time, err error) {
	if req.GetStartDate() == nil || req.GetEndDate() == nil {
		err = status.Error(codes.InvalidArgument, "start and end dates are required")
		return
	}
	if err = req.GetStartDate().CheckValid(); err != nil {
		err = status.Errorf(codes.InvalidArgument, "invalid start date: %v", err)
		return
	}
	if err = req.GetEndDate().CheckValid(); err != nil {
		err = status.Errorf(codes.InvalidArgument, "invalid end date: %v", err)
		return
	}

	start = req.GetStartDate().AsTime()
	end = req.GetEndDate().AsTime()

	if end.Before(start) {
		err = status.Error(codes.InvalidArgument, "end date must be after start date")
		return
	}

	return
}

// normalizeKey builds a cache key from the exact window bounds. Windows that
// differ by a second are different queries.
func normalizeKey(prefix CacheKeyType, start, end time.Time) string {
	s := start.UTC().Format(time.RFC3339)
	e := end.UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s:%s:%s", prefix, s, e)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	var scoringErr *scoring.ScoringError
	switch {
	case errors.Is(err, service.ErrNoCalls):
		s.logger.Info("no calls found", zap.String("op", op))
		return status.Error(codes.NotFound, "no calls found for the given period")
	case errors.Is(err, service.ErrNoScores):
		s.logger.Info("no scores found", zap.String("op", op))
		return status.Error(codes.NotFound, "no scored calls found for the given period")
	case errors.Is(err, service.ErrCallNotFound):
		return status.Error(codes.NotFound, "call not found")
	case errors.Is(err, service.ErrNotScored):
		return status.Error(codes.NotFound, "call has not been scored")
	case errors.Is(err, service.ErrInvalidWindow):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &scoringErr):
		return status.Errorf(codes.FailedPrecondition, "call cannot be scored: %s", scoringErr.Reason())
	case errors.Is(err, service.ErrSupplierNotConfigured):
		return status.Error(codes.Unavailable, "call supplier is not configured")
	case errors.Is(err, service.ErrSupplierFailure):
		s.logger.Error("supplier failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "supplier error")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) metrics(ctx context.Context, op string, key CacheKeyType, req *pb.TimePeriodRequest,
	fetch func(ctx context.Context, start, end time.Time) ([]domain.Metrics, error),
) (*pb.MetricsResponse, error) {
	start, end, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(key, start, end)

	metrics, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]domain.Metrics, error) {
		return fetch(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	return &pb.MetricsResponse{Metrics: mapToProtoMetrics(metrics)}, nil
}

func (s *GRPCHandlers) GetCampaignMetrics(ctx context.Context, req *pb.TimePeriodRequest) (*pb.MetricsResponse, error) {
	return s.metrics(ctx, "GetCampaignMetrics", cacheKeyCampaignMetrics, req, s.analytics.GetCampaignMetrics)
}

func (s *GRPCHandlers) GetAgentMetrics(ctx context.Context, req *pb.TimePeriodRequest) (*pb.MetricsResponse, error) {
	return s.metrics(ctx, "GetAgentMetrics", cacheKeyAgentMetrics, req, s.analytics.GetAgentMetrics)
}

func (s *GRPCHandlers) GetOverallQualityScore(ctx context.Context, req *pb.TimePeriodRequest) (*pb.OverallQualityScoreResponse, error) {
	start, end, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyOverallScore, start, end)

	score, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (float64, error) {
		return s.analytics.GetOverallScore(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetOverallQualityScore", err)
	}

	return &pb.OverallQualityScoreResponse{Score: score}, nil
}

func (s *GRPCHandlers) GetPeriodOverPeriodScoreChange(ctx context.Context, req *pb.TimePeriodRequest) (*pb.PeriodOverPeriodScoreChangeResponse, error) {
	start, end, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyPeriodChange, start, end)

	change, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) (service.PeriodChange, error) {
		return s.analytics.GetPeriodOverPeriodScoreChange(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetPeriodOverPeriodScoreChange", err)
	}

	return &pb.PeriodOverPeriodScoreChangeResponse{
		CurrentPeriodScore:  change.CurrentPeriodScore,
		PreviousPeriodScore: change.PreviousPeriodScore,
		ChangePercentage:    change.ChangePercentage,
	}, nil
}

func (s *GRPCHandlers) GetScoreTrend(ctx context.Context, req *pb.TimePeriodRequest) (*pb.ScoreTrendResponse, error) {
	start, end, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	cacheKey := normalizeKey(cacheKeyScoreTrend, start, end)

	trend, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey, s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]service.PeriodScore, error) {
		return s.analytics.GetScoreTrend(fetchCtx, start, end)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetScoreTrend", err)
	}

	out := make([]*pb.PeriodScore, len(trend))
	for i, p := range trend {
		out[i] = &pb.PeriodScore{Period: p.Period, Score: p.Score, Count: int64(p.Count)}
	}
	return &pb.ScoreTrendResponse{PeriodScores: out}, nil
}

// GetCallAnalysis is not cached; a rescore must be visible immediately.
func (s *GRPCHandlers) GetCallAnalysis(ctx context.Context, req *pb.CallAnalysisRequest) (*pb.CallAnalysisResponse, error) {
	callID := strings.TrimSpace(req.GetCallId())
	if callID == "" {
		return nil, status.Error(codes.InvalidArgument, "call id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	rec, err := s.analytics.GetCallAnalysis(ctx, callID)
	if err != nil {
		return nil, s.handleError(ctx, "GetCallAnalysis", err)
	}
	return mapToProtoAnalysis(rec), nil
}

// SyncCalls runs a sync for the window and drops every cached report.
func (s *GRPCHandlers) SyncCalls(ctx context.Context, req *pb.TimePeriodRequest) (*pb.SyncCallsResponse, error) {
	start, end, err := s.parseAndValidate(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	report, err := s.analytics.Sync(ctx, start, end)
	if err != nil {
		return nil, s.handleError(ctx, "SyncCalls", err)
	}
	s.invalidate(ctx)

	notScored := make(map[string]int64, len(report.NotScored))
	for reason, n := range report.NotScored {
		notScored[reason] = int64(n)
	}
	return &pb.SyncCallsResponse{
		RunId:                 report.RunID,
		Fetched:               int64(report.Fetched),
		Normalized:            int64(report.Normalized),
		Invalid:               int64(report.Invalid),
		Transcribed:           int64(report.Transcribed),
		TranscriptionFailures: int64(report.TranscriptionFailures),
		Scored:                int64(report.Scored),
		Unchanged:             int64(report.Unchanged),
		NotScored:             notScored,
	}, nil
}

func (s *GRPCHandlers) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	n, err := s.cache.DeletePrefix(ctx, CacheKeyPrefix)
	if err != nil {
		s.logger.Warn("cache invalidation failed", zap.Error(err))
		return
	}
	s.logger.Debug("cache invalidated", zap.Int("keys", n))
}

func mapToProtoMetrics(metrics []domain.Metrics) []*pb.GroupMetrics {
	out := make([]*pb.GroupMetrics, len(metrics))
	for i, m := range metrics {
		g := &pb.GroupMetrics{
			Key:               m.Key,
			Name:              m.Name,
			TotalCalls:        int64(m.TotalCalls),
			CompletedCalls:    int64(m.CompletedCalls),
			RejectedCalls:     int64(m.RejectedCalls),
			SkippedCalls:      int64(m.SkippedCalls),
			ScoredCalls:       int64(m.ScoredCalls),
			GoodCalls:         int64(m.GoodCalls),
			BadCalls:          int64(m.BadCalls),
			UglyCalls:         int64(m.UglyCalls),
			TotalAudioMinutes: m.TotalAudioMinutes,
			Conversions:       int64(m.Conversions),
			ConversionRate:    m.ConversionRate,
			Revenue:           m.Revenue.StringFixed(2),
			Cost:              m.Cost.StringFixed(2),
		}
		if m.AverageScore != nil {
			g.HasAverageScore = true
			g.AverageScore = *m.AverageScore
		}
		out[i] = g
	}
	return out
}

func mapToProtoAnalysis(rec domain.AnalysisRecord) *pb.CallAnalysisResponse {
	a := rec.Analysis
	out := &pb.CallAnalysisResponse{
		CallId:               a.CallID,
		Version:              int32(rec.Version),
		CreatedAt:            timestamppb.New(rec.CreatedAt),
		Kind:                 string(a.Kind),
		ScorerVersion:        a.ScorerVersion,
		OverallScore:         a.OverallScore,
		OverallRating:        string(a.OverallRating),
		Converted:            a.BusinessConversion.Converted,
		ConversionType:       string(a.BusinessConversion.Type),
		ConversionConfidence: a.BusinessConversion.Confidence,
	}
	if t := a.ToneQuality; t != nil {
		out.Tone = &pb.ToneQuality{
			Professionalism: t.Professionalism,
			Friendliness:    t.Friendliness,
			Empathy:         t.Empathy,
			Clarity:         t.Clarity,
			Overall:         t.Overall,
		}
	}
	if p := a.AgentPerformance; p != nil {
		out.Agent = &pb.AgentPerformance{
			Communication:    p.Communication,
			ProblemSolving:   p.ProblemSolving,
			ProductKnowledge: p.ProductKnowledge,
			CustomerService:  p.CustomerService,
			Overall:          p.Overall,
		}
	}
	if a.SentimentAnalysis != nil {
		out.Sentiment = string(a.SentimentAnalysis.Overall)
	}
	return out
}
