package app

import "regexp"

// IntentClassifier decides whether a user turn is a full generation request
// (staged progress) or an ordinary question (linear progress).
//
// The shipped heuristic is a plain pattern match on the raw input. It is kept
// behind this interface so a smarter classifier can replace it without
// touching the pipeline.
type IntentClassifier interface {
	IsGeneration(input string) bool
}

var generationPattern = regexp.MustCompile(`(?i)\b(generate|write|create|draft)\b.*\b(script|screenplay|story|scene|film|movie|episode)\b`)

// RegexClassifier matches generate/write intent wording, case-insensitive.
type RegexClassifier struct {
	pattern *regexp.Regexp
}

func NewRegexClassifier() RegexClassifier {
	return RegexClassifier{pattern: generationPattern}
}

func (c RegexClassifier) IsGeneration(input string) bool {
	return c.pattern.MatchString(input)
}
