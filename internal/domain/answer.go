package domain

// AnswerSource identifies a recipe that grounded a generated answer.
type AnswerSource struct {
	ID    uint    `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// RAGAnswer is the per-request result of the recommendation pipeline.
// Confidence is a heuristic scaling of the average retrieval similarity
// (min(1, avg*2)), not a calibrated probability. LatencyMs measures the
// full pipeline from request receipt to the terminal state.
type RAGAnswer struct {
	Text       string         `json:"text"`
	Sources    []AnswerSource `json:"sources"`
	Confidence float64        `json:"confidence"`
	LatencyMs  int64          `json:"latency_ms"`

	// Generated is false when the text came from a template instead of the
	// generation model (model unavailable, timeout, or nothing to recommend).
	Generated bool `json:"generated"`

	// Cached marks an answer served from the result cache. LatencyMs still
	// measures this request, not the original computation.
	Cached bool `json:"cached,omitempty"`
}
