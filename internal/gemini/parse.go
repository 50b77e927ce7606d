package gemini

import (
	"encoding/json"
	"regexp"
	"strings"

	"snappword/internal/model"
)

var fencedJSON = regexp.MustCompile("```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")

// ParseResponse turns raw model output into a structured result. The parse
// is total: direct JSON first, then a fenced code block, then the outermost
// brace-delimited blob, and finally an empty result. It never fails.
func ParseResponse(raw string) *model.ParseResult {
	if r, ok := tryDecode(raw); ok {
		return r
	}

	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		if r, ok := tryDecode(m[1]); ok {
			return r
		}
	}

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			if r, ok := tryDecode(raw[start : end+1]); ok {
				return r
			}
		}
	}

	return &model.ParseResult{
		SourceApp:  "General",
		TargetLang: "en",
		SourceLang: "zh-TW",
	}
}

func tryDecode(s string) (*model.ParseResult, bool) {
	var r model.ParseResult
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return nil, false
	}
	if r.SourceApp == "" {
		r.SourceApp = "General"
	}
	if r.TargetLang == "" {
		r.TargetLang = "en"
	}
	if r.SourceLang == "" {
		r.SourceLang = "zh-TW"
	}
	return &r, true
}
