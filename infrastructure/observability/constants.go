package observability

// Metric name prefixes
const (
	MetricPrefix = "curation_engine"
)

// Metric names
const (
	// Pick metrics
	PicksRecordedTotal    = MetricPrefix + ".picks.recorded_total"
	StreakMilestonesTotal = MetricPrefix + ".picks.streak_milestones_total"

	// Swap metrics
	SwapsScheduledTotal = MetricPrefix + ".swaps.scheduled_total"
	BoundarySwapsTotal  = MetricPrefix + ".boundary.swaps_total"

	// Roster metrics
	RosterSlotsOccupied = MetricPrefix + ".roster.slots_occupied"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	// Common labels
	LabelEventType = "event_type"
	LabelOutcome   = "outcome"

	// Database labels
	LabelOperation = "operation"

	// HTTP labels
	LabelRoute  = "route"
	LabelStatus = "status"

	// Streak labels
	LabelMilestoneDays = "milestone_days"
)

// Swap outcomes
const (
	OutcomeApplied  = "applied"
	OutcomeDeferred = "deferred"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)
