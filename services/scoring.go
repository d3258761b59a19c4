package services

// Scorer assigns a confidence score to a computed answer. The weighted
// scorer below is a placeholder contract, kept pluggable so a real grading
// model can slot in without touching the pipeline.
type Scorer interface {
	Score(correct bool) float64
}

// WeightedScorer multiplies a document weight by a question weight when the
// answer is considered correct, zero otherwise. What "correct" means is
// undefined here; the pipeline passes true for any successful generation.
type WeightedScorer struct {
	DocumentWeight float64
	QuestionWeight float64
}

func NewWeightedScorer() *WeightedScorer {
	return &WeightedScorer{DocumentWeight: 1.0, QuestionWeight: 1.0}
}

func (s *WeightedScorer) Score(correct bool) float64 {
	if !correct {
		return 0.0
	}
	return s.DocumentWeight * s.QuestionWeight
}
