package services

import "testing"

func TestWeightedScorer(t *testing.T) {
	s := NewWeightedScorer()
	if got := s.Score(true); got != 1.0 {
		t.Fatalf("default correct score = %f, want 1.0", got)
	}
	if got := s.Score(false); got != 0.0 {
		t.Fatalf("incorrect score = %f, want 0.0", got)
	}

	s = &WeightedScorer{DocumentWeight: 2.0, QuestionWeight: 0.5}
	if got := s.Score(true); got != 1.0 {
		t.Fatalf("weighted correct score = %f, want 1.0", got)
	}
	if got := s.Score(false); got != 0.0 {
		t.Fatalf("weighted incorrect score = %f, want 0.0", got)
	}
}
