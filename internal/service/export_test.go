package service

var (
	IsWeeklyAggregation = isWeeklyAggregation
	ReasonOf            = reasonOf
)
