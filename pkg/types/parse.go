package types

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInlineComment = regexp.MustCompile(`(?m)//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// ParseAnalysisResult decodes a vision model reply. Models wrap JSON in code
// fences, add comments and trailing commas; all of that is stripped first.
// Replies that still do not decode yield a fallback result around
// DefaultHeadBox with a "fallback" tag instead of an error.
func ParseAnalysisResult(raw string) *AnalysisResult {
	raw = SanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return fallback("unclear image", "Model returned non-JSON response", "non-json")
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return fallback("parse error", "Failed to parse model response", "parse-error")
	}

	// Empty object: keep the neutral defaults
	if result.Primary.Label == "" && result.Primary.Confidence == 0 {
		if result.Primary.Box.W == 0 && result.Primary.Box.H == 0 {
			result.Primary.Box = DefaultHeadBox
		}
		if result.Primary.Cx == 0 && result.Primary.Cy == 0 {
			result.Primary.Cx, result.Primary.Cy = result.Primary.Box.Center()
		}
	}
	return &result
}

// SanitizeModelJSON removes code fences, comments and trailing commas and
// keeps only the outermost {...}
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reInlineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

func fallback(label, description, tag string) *AnalysisResult {
	cx, cy := DefaultHeadBox.Center()
	return &AnalysisResult{
		Primary: Primary{
			Label:      label,
			Confidence: 0.1,
			Box:        DefaultHeadBox,
			Cx:         cx,
			Cy:         cy,
		},
		Description: description,
		Tags:        []string{tag, "fallback"},
	}
}
