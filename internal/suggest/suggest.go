// Package suggest estimates story points from an item's title and
// description using weighted keyword matching.
package suggest

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrEmptyInput is returned when title or description is missing.
var ErrEmptyInput = errors.New("suggest: title and description are required")

const (
	minPoints = 3
	maxPoints = 15

	// Length factor: one multiplier unit per 20 words, capped at 2x.
	lengthFactorDivisor = 20.0
	lengthFactorCap     = 2.0

	// Confidence saturates at 5 distinct matched keywords.
	confidenceSaturation = 5.0
)

// complexityWeights maps keywords to their complexity contribution. Higher
// weights mark work that tends to sprawl.
var complexityWeights = map[string]int{
	"algorithm":      8,
	"architecture":   8,
	"optimization":   7,
	"migration":      7,
	"integration":    7,
	"authentication": 7,
	"authorization":  7,
	"security":       7,
	"scalability":    7,
	"complex":        7,
	"refactor":       6,
	"database":       6,
	"performance":    6,
	"framework":      6,
	"third-party":    6,
	"api":            5,
	"multiple":       5,
	"service":        5,
	"implement":      4,
	"update":         4,
	"modify":         4,
	"enhance":        4,
	"improve":        4,
	"feature":        4,
	"component":      4,
	"endpoint":       4,
	"validation":     4,
	"testing":        4,
	"create":         3,
	"add":            3,
	"ui":             3,
	"fix":            2,
	"bug":            2,
	"change":         2,
	"remove":         2,
	"delete":         2,
	"simple":         2,
	"minor":          2,
	"small":          2,
	"text":           2,
	"label":          2,
	"styling":        2,
	"css":            2,
	"typo":           1,
}

var interfaceKeywords = map[string]bool{
	"frontend": true, "backend": true, "ui": true, "ux": true,
	"interface": true, "screen": true, "page": true, "form": true,
	"modal": true, "dialog": true, "api": true, "endpoint": true,
	"rest": true, "graphql": true, "websocket": true, "microservice": true,
}

var techKeywords = map[string]bool{
	"react": true, "vue": true, "angular": true, "node": true,
	"python": true, "java": true, "mongodb": true, "postgresql": true,
	"mysql": true, "redis": true, "docker": true, "kubernetes": true,
	"aws": true, "azure": true, "gcp": true,
}

// Suggestion is the estimator's output. Indicators maps each matched
// complexity keyword to its occurrence count.
type Suggestion struct {
	Points     int            `json:"suggested_points"`
	Confidence float64        `json:"confidence"`
	Reasoning  []string       `json:"reasoning"`
	Indicators map[string]int `json:"complexity_indicators"`
}

type features struct {
	complexityScore int
	matched         map[string]int
	interfaceCount  int
	techCount       int
	wordCount       int
	lengthFactor    float64
}

func extract(text string) features {
	f := features{matched: map[string]int{}}
	for _, w := range tokenize(text) {
		f.wordCount++
		if weight, ok := complexityWeights[w]; ok {
			f.complexityScore += weight
			f.matched[w]++
		}
		if interfaceKeywords[w] {
			f.interfaceCount++
		}
		if techKeywords[w] {
			f.techCount++
		}
	}
	f.lengthFactor = math.Min(float64(f.wordCount)/lengthFactorDivisor, lengthFactorCap)
	return f
}

func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return false
		default:
			return true
		}
	})
}

// Estimate suggests story points for an item. Title keywords weigh double,
// a terse or verbose write-up scales the score, and the result is clamped
// to the planning scale.
func Estimate(title, description string) (*Suggestion, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return nil, ErrEmptyInput
	}

	tf := extract(title)
	df := extract(description)

	totalComplexity := tf.complexityScore*2 + df.complexityScore
	totalInterfaces := tf.interfaceCount + df.interfaceCount
	totalTech := tf.techCount + df.techCount

	score := float64(totalComplexity) / 10
	switch {
	case totalInterfaces > 3:
		score += 3
	case totalInterfaces > 1:
		score += 1.5
	}
	switch {
	case totalTech > 2:
		score += 2
	case totalTech > 0:
		score += 1
	}
	score *= (tf.lengthFactor + df.lengthFactor) / 2

	points := int(math.Round(score))
	if points < minPoints {
		points = minPoints
	} else if points > maxPoints {
		points = maxPoints
	}

	indicators := map[string]int{}
	for k, v := range tf.matched {
		indicators[k] += v
	}
	for k, v := range df.matched {
		indicators[k] += v
	}

	confidence := math.Min(float64(len(indicators))/confidenceSaturation, 1.0)

	return &Suggestion{
		Points:     points,
		Confidence: confidence,
		Reasoning:  buildReasoning(indicators, totalInterfaces, totalTech, tf.wordCount, df.wordCount),
		Indicators: indicators,
	}, nil
}

func buildReasoning(indicators map[string]int, interfaces, tech, titleWords, descWords int) []string {
	var reasoning []string

	if len(indicators) > 0 {
		type kw struct {
			word  string
			count int
		}
		ranked := make([]kw, 0, len(indicators))
		for w, c := range indicators {
			ranked = append(ranked, kw{w, c})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].count != ranked[j].count {
				return ranked[i].count > ranked[j].count
			}
			return ranked[i].word < ranked[j].word
		})
		if len(ranked) > 3 {
			ranked = ranked[:3]
		}
		words := make([]string, len(ranked))
		for i, k := range ranked {
			words[i] = k.word
		}
		reasoning = append(reasoning, "Detected complexity keywords: "+strings.Join(words, ", "))
	}
	if interfaces > 0 {
		reasoning = append(reasoning, fmt.Sprintf("Involves %d interface(s)/integration(s)", interfaces))
	}
	if tech > 0 {
		reasoning = append(reasoning, fmt.Sprintf("Uses %d technology stack(s)", tech))
	}

	avgWords := float64(titleWords+descWords) / 2
	if avgWords > 30 {
		reasoning = append(reasoning, "Detailed description suggests higher complexity")
	} else if avgWords < 10 {
		reasoning = append(reasoning, "Brief description suggests simpler task")
	}

	if len(reasoning) == 0 {
		reasoning = append(reasoning, "Limited information, conservative estimate")
	}
	return reasoning
}
