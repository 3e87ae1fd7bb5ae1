package question

// Difficulty constants for readability.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Canonical category set. The legacy names used by the first static bank
// ("memes-nfts", "scams", "incidents") are accepted as aliases and folded
// into this set by the validator.
const (
	CategoryDevelopment      = "development"
	CategoryMemesNFTsTokens  = "memes-nfts-tokens"
	CategoryScamsIncidents   = "scams-incidents"
	CategoryCryptoCharacters = "crypto-characters"
)

// Categories lists the canonical categories in enumeration order. The order
// matters: remainder questions in a batch are assigned to the earliest
// categories.
var Categories = []string{
	CategoryDevelopment,
	CategoryMemesNFTsTokens,
	CategoryScamsIncidents,
	CategoryCryptoCharacters,
}

// categoryAliases maps accepted external category spellings to the canonical
// set. Anything not present here is rejected by the validator.
var categoryAliases = map[string]string{
	CategoryDevelopment:      CategoryDevelopment,
	CategoryMemesNFTsTokens:  CategoryMemesNFTsTokens,
	CategoryScamsIncidents:   CategoryScamsIncidents,
	CategoryCryptoCharacters: CategoryCryptoCharacters,
	"memes-nfts":             CategoryMemesNFTsTokens,
	"scams":                  CategoryScamsIncidents,
	"incidents":              CategoryScamsIncidents,
}

// NormalizeCategory resolves an external category string to the canonical set.
func NormalizeCategory(raw string) (string, bool) {
	c, ok := categoryAliases[raw]
	return c, ok
}

// ValidDifficulty reports whether s is one of the three difficulty levels.
func ValidDifficulty(s string) bool {
	return s == DifficultyEasy || s == DifficultyMedium || s == DifficultyHard
}

// Question is the canonical record delivered to callers and persisted to the
// store. Options always holds exactly four distinct entries and CorrectAnswer
// indexes into it.
type Question struct {
	ID            string   `json:"id"`
	Category      string   `json:"category"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	YearIndicator int      `json:"yearIndicator"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// BatchRequest is the input contract of the sourcing pipeline.
type BatchRequest struct {
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

// Provenance tags indicating which tier satisfied a request.
const (
	SourceGenerated = "generated"
	SourceCached    = "cached"
	SourceStatic    = "static"
	SourceHardcoded = "hardcoded"
)

// BatchMetrics carries best-effort observability data alongside a batch.
type BatchMetrics struct {
	GenerationTimeMs int64 `json:"generationTimeMs,omitempty"`
	FromDatabase     bool  `json:"fromDatabase,omitempty"`
	Fallback         bool  `json:"fallback,omitempty"`
	Err              bool  `json:"error,omitempty"`
}

// BatchResult is what the pipeline returns. Questions is best-effort equal to
// the requested count and never contains duplicate IDs.
type BatchResult struct {
	Questions []Question   `json:"questions"`
	Source    string       `json:"source"`
	Metrics   BatchMetrics `json:"metrics"`
}
