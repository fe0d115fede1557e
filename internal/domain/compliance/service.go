package compliance

import "context"

type Service interface {
	// Record stores a policy breach. Callers inside a transaction pass its context.
	Record(ctx context.Context, req RecordRequest) error

	// Report lists one member's events for a month (own, or any for managers)
	Report(ctx context.Context, req ReportRequest) (ReportResponse, error)

	// Summary aggregates the guild's events per member (manager)
	Summary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
}
