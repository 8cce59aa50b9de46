package model

// SuggestionReason names the signal that contributed most to a suggestion's
// score.
type SuggestionReason string

const (
	// ReasonFrequency indicates the product is bought often.
	ReasonFrequency SuggestionReason = "frequency"
	// ReasonOverdue indicates the product is past its usual repurchase interval.
	ReasonOverdue SuggestionReason = "overdue"
	// ReasonSeasonal indicates purchases of the product cluster in the current month.
	ReasonSeasonal SuggestionReason = "seasonal"
	// ReasonComplement indicates the product co-occurs with items on the active list.
	ReasonComplement SuggestionReason = "complement"
)

// Suggestion is one ranked shopping recommendation. Suggestions are
// recomputed on demand from purchase history and never persisted.
type Suggestion struct {
	ProductID int64
	Name      string
	Category  string
	Score     float64
	Reason    SuggestionReason
}
