package domain

// Document is a single retrievable unit of the corpus.
type Document struct {
	DocID string `json:"doc_id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// RetrievedItem is one ranked retrieval hit for a query.
// Scores are cosine similarities clamped to [0,1]; ranks start at 1.
type RetrievedItem struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// GoldItem is one question of the gold evaluation set.
type GoldItem struct {
	ID             string   `json:"id" yaml:"id"`
	Question       string   `json:"question" yaml:"question"`
	Expected       string   `json:"expected" yaml:"expected"`
	MustInclude    []string `json:"must_include" yaml:"must_include"`
	MustNotInclude []string `json:"must_not_include" yaml:"must_not_include"`
}

// Latency is the per-question wall-clock breakdown in milliseconds.
type Latency struct {
	RetrievalMs  float64 `json:"retrieval_ms"`
	GenerationMs float64 `json:"generation_ms"`
	TotalMs      float64 `json:"total_ms"`
}

// Error kinds recorded on failed run records.
const (
	ErrorKindAnswerSource  = "answer_source"
	ErrorKindAnswerTimeout = "answer_timeout"
)

// RunRecord is the per-question output of a run. One record per gold
// question, in gold-set order, whether the question succeeded or not.
// Never mutated after creation.
type RunRecord struct {
	ID        string          `json:"id"`
	Question  string          `json:"question"`
	Retrieved []RetrievedItem `json:"retrieved"`
	Context   string          `json:"context"`
	Answer    string          `json:"answer"`
	Latency   Latency         `json:"latency_ms"`

	Failed    bool   `json:"failed,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// EvalRecord carries the scored metrics for one run record.
type EvalRecord struct {
	ID                       string  `json:"id"`
	MustIncludeScore         float64 `json:"must_include_score"`
	MustNotIncludeViolations int     `json:"must_not_include_violations"`
	GroundingScore           float64 `json:"grounding_score"`
	Latency                  Latency `json:"latency_ms"`

	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}
