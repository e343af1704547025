package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "callinsights.v1.CallAnalytics"

const (
	CallAnalytics_GetCampaignMetrics_FullMethodName             = "/callinsights.v1.CallAnalytics/GetCampaignMetrics"
	CallAnalytics_GetAgentMetrics_FullMethodName                = "/callinsights.v1.CallAnalytics/GetAgentMetrics"
	CallAnalytics_GetOverallQualityScore_FullMethodName         = "/callinsights.v1.CallAnalytics/GetOverallQualityScore"
	CallAnalytics_GetPeriodOverPeriodScoreChange_FullMethodName = "/callinsights.v1.CallAnalytics/GetPeriodOverPeriodScoreChange"
	CallAnalytics_GetScoreTrend_FullMethodName                  = "/callinsights.v1.CallAnalytics/GetScoreTrend"
	CallAnalytics_GetCallAnalysis_FullMethodName                = "/callinsights.v1.CallAnalytics/GetCallAnalysis"
	CallAnalytics_SyncCalls_FullMethodName                      = "/callinsights.v1.CallAnalytics/SyncCalls"
)

type CallAnalyticsClient interface {
	GetCampaignMetrics(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*MetricsResponse, error)
	GetAgentMetrics(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*MetricsResponse, error)
	GetOverallQualityScore(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*OverallQualityScoreResponse, error)
	GetPeriodOverPeriodScoreChange(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*PeriodOverPeriodScoreChangeResponse, error)
	GetScoreTrend(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*ScoreTrendResponse, error)
	GetCallAnalysis(ctx context.Context, in *CallAnalysisRequest, opts ...grpc.CallOption) (*CallAnalysisResponse, error)
	SyncCalls(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*SyncCallsResponse, error)
}

type callAnalyticsClient struct {
	cc grpc.ClientConnInterface
}

func NewCallAnalyticsClient(cc grpc.ClientConnInterface) CallAnalyticsClient {
	return &callAnalyticsClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *callAnalyticsClient) GetCampaignMetrics(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*MetricsResponse, error) {
	return invoke[MetricsResponse](ctx, c.cc, CallAnalytics_GetCampaignMetrics_FullMethodName, in, opts)
}

func (c *callAnalyticsClient) GetAgentMetrics(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*MetricsResponse, error) {
	return invoke[MetricsResponse](ctx, c.cc, CallAnalytics_GetAgentMetrics_FullMethodName, in, opts)
}

func (c *callAnalyticsClient) GetOverallQualityScore(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*OverallQualityScoreResponse, error) {
	return invoke[OverallQualityScoreResponse](ctx, c.cc, CallAnalytics_GetOverallQualityScore_FullMethodName, in, opts)
}

func (c *callAnalyticsClient) GetPeriodOverPeriodScoreChange(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*PeriodOverPeriodScoreChangeResponse, error) {
	return invoke[PeriodOverPeriodScoreChangeResponse](ctx, c.cc, CallAnalytics_GetPeriodOverPeriodScoreChange_FullMethodName, in, opts)
}

func (c *callAnalyticsClient) GetScoreTrend(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*ScoreTrendResponse, error) {
	return invoke[ScoreTrendResponse](ctx, c.cc, CallAnalytics_GetScoreTrend_FullMethodName, in, opts)
}

func (c *callAnalyticsClient) GetCallAnalysis(ctx context.Context, in *CallAnalysisRequest, opts ...grpc.CallOption) (*CallAnalysisResponse, error) {
	return invoke[CallAnalysisResponse](ctx, c.cc, CallAnalytics_GetCallAnalysis_FullMethodName, in, opts)
}

func (c *callAnalyticsClient) SyncCalls(ctx context.Context, in *TimePeriodRequest, opts ...grpc.CallOption) (*SyncCallsResponse, error) {
	return invoke[SyncCallsResponse](ctx, c.cc, CallAnalytics_SyncCalls_FullMethodName, in, opts)
}

// CallAnalyticsServer is the server API for the CallAnalytics service.
// Implementations must embed UnimplementedCallAnalyticsServer.
type CallAnalyticsServer interface {
	GetCampaignMetrics(context.Context, *TimePeriodRequest) (*MetricsResponse, error)
	GetAgentMetrics(context.Context, *TimePeriodRequest) (*MetricsResponse, error)
	GetOverallQualityScore(context.Context, *TimePeriodRequest) (*OverallQualityScoreResponse, error)
	GetPeriodOverPeriodScoreChange(context.Context, *TimePeriodRequest) (*PeriodOverPeriodScoreChangeResponse, error)
	GetScoreTrend(context.Context, *TimePeriodRequest) (*ScoreTrendResponse, error)
	GetCallAnalysis(context.Context, *CallAnalysisRequest) (*CallAnalysisResponse, error)
	SyncCalls(context.Context, *TimePeriodRequest) (*SyncCallsResponse, error)
	mustEmbedUnimplementedCallAnalyticsServer()
}

type UnimplementedCallAnalyticsServer struct{}

func (UnimplementedCallAnalyticsServer) GetCampaignMetrics(context.Context, *TimePeriodRequest) (*MetricsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCampaignMetrics not implemented")
}

func (UnimplementedCallAnalyticsServer) GetAgentMetrics(context.Context, *TimePeriodRequest) (*MetricsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAgentMetrics not implemented")
}

func (UnimplementedCallAnalyticsServer) GetOverallQualityScore(context.Context, *TimePeriodRequest) (*OverallQualityScoreResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOverallQualityScore not implemented")
}

func (UnimplementedCallAnalyticsServer) GetPeriodOverPeriodScoreChange(context.Context, *TimePeriodRequest) (*PeriodOverPeriodScoreChangeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPeriodOverPeriodScoreChange not implemented")
}

func (UnimplementedCallAnalyticsServer) GetScoreTrend(context.Context, *TimePeriodRequest) (*ScoreTrendResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetScoreTrend not implemented")
}

func (UnimplementedCallAnalyticsServer) GetCallAnalysis(context.Context, *CallAnalysisRequest) (*CallAnalysisResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCallAnalysis not implemented")
}

func (UnimplementedCallAnalyticsServer) SyncCalls(context.Context, *TimePeriodRequest) (*SyncCallsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SyncCalls not implemented")
}

func (UnimplementedCallAnalyticsServer) mustEmbedUnimplementedCallAnalyticsServer() {}

func RegisterCallAnalyticsServer(s grpc.ServiceRegistrar, srv CallAnalyticsServer) {
	s.RegisterService(&CallAnalytics_ServiceDesc, srv)
}

func unary[Req any, Resp any](fullMethod string, call func(CallAnalyticsServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CallAnalyticsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CallAnalyticsServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CallAnalytics_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CallAnalyticsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetCampaignMetrics",
			Handler:    unary(CallAnalytics_GetCampaignMetrics_FullMethodName, CallAnalyticsServer.GetCampaignMetrics),
		},
		{
			MethodName: "GetAgentMetrics",
			Handler:    unary(CallAnalytics_GetAgentMetrics_FullMethodName, CallAnalyticsServer.GetAgentMetrics),
		},
		{
			MethodName: "GetOverallQualityScore",
			Handler:    unary(CallAnalytics_GetOverallQualityScore_FullMethodName, CallAnalyticsServer.GetOverallQualityScore),
		},
		{
			MethodName: "GetPeriodOverPeriodScoreChange",
			Handler:    unary(CallAnalytics_GetPeriodOverPeriodScoreChange_FullMethodName, CallAnalyticsServer.GetPeriodOverPeriodScoreChange),
		},
		{
			MethodName: "GetScoreTrend",
			Handler:    unary(CallAnalytics_GetScoreTrend_FullMethodName, CallAnalyticsServer.GetScoreTrend),
		},
		{
			MethodName: "GetCallAnalysis",
			Handler:    unary(CallAnalytics_GetCallAnalysis_FullMethodName, CallAnalyticsServer.GetCallAnalysis),
		},
		{
			MethodName: "SyncCalls",
			Handler:    unary(CallAnalytics_SyncCalls_FullMethodName, CallAnalyticsServer.SyncCalls),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "callinsights/v1/call_analytics.proto",
}
