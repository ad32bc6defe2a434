package suggest

import (
	"errors"
	"strings"
	"testing"
)

func TestEstimateRejectsEmptyInput(t *testing.T) {
	if _, err := Estimate("", "something"); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty title: err = %v", err)
	}
	if _, err := Estimate("something", "   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("blank description: err = %v", err)
	}
}

func TestEstimateSimpleTaskGetsFloor(t *testing.T) {
	s, err := Estimate("Fix typo", "Fix a small typo in the label")
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if s.Points != minPoints {
		t.Errorf("Points = %d, want floor %d", s.Points, minPoints)
	}
	if s.Indicators["typo"] == 0 || s.Indicators["fix"] == 0 {
		t.Errorf("low-complexity keywords not detected: %v", s.Indicators)
	}
	joined := strings.Join(s.Reasoning, " ")
	if !strings.Contains(joined, "Brief description") {
		t.Errorf("short text should be called out: %v", s.Reasoning)
	}
}

func TestEstimateComplexWorkScoresHigher(t *testing.T) {
	title := "Refactor authentication architecture for the api integration"
	desc := strings.Repeat(
		"Implement a complex migration of the authentication and authorization "+
			"database layer with performance optimization across multiple "+
			"backend microservice endpoints using postgresql redis and docker. ", 2)

	s, err := Estimate(title, desc)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if s.Points <= minPoints {
		t.Errorf("Points = %d, want above the floor", s.Points)
	}
	if s.Points > maxPoints {
		t.Errorf("Points = %d, exceeds cap %d", s.Points, maxPoints)
	}
	if s.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want saturated at 1.0 with many keywords", s.Confidence)
	}
	joined := strings.Join(s.Reasoning, " ")
	if !strings.Contains(joined, "complexity keywords") {
		t.Errorf("reasoning missing keyword line: %v", s.Reasoning)
	}
	if !strings.Contains(joined, "technology stack") {
		t.Errorf("reasoning missing tech line: %v", s.Reasoning)
	}
}

func TestEstimateTitleWeighsDouble(t *testing.T) {
	// Same words, swapped position: keyword in the title scores higher.
	long := strings.Repeat("and then some more words here ", 7)
	inTitle, err := Estimate("architecture overhaul work", "plain words only "+long)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	inDesc, err := Estimate("plain words only", "architecture overhaul work "+long)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if inTitle.Points < inDesc.Points {
		t.Errorf("title keyword scored %d, description keyword %d; title should not score lower", inTitle.Points, inDesc.Points)
	}
}

func TestEstimateConfidenceScalesWithMatches(t *testing.T) {
	// Mid-length text with no signal words hits the fallback line.
	neutral := "some perfectly ordinary words that do not mention anything notable whatsoever today"
	none, err := Estimate(neutral, neutral)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if none.Confidence != 0 {
		t.Errorf("no keywords: confidence = %v, want 0", none.Confidence)
	}
	if len(none.Reasoning) == 0 || !strings.Contains(none.Reasoning[0], "Limited information") {
		t.Errorf("no-signal reasoning = %v", none.Reasoning)
	}

	one, err := Estimate("fix the thing", "just a quick correction")
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if one.Confidence != 0.2 {
		t.Errorf("one keyword: confidence = %v, want 0.2", one.Confidence)
	}
}

func TestTokenizeKeepsHyphenatedKeywords(t *testing.T) {
	s, err := Estimate("Add third-party integration", "wire the third-party billing api into checkout")
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if s.Indicators["third-party"] != 2 {
		t.Errorf("third-party count = %d, want 2", s.Indicators["third-party"])
	}
}
