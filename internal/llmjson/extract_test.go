package llmjson

import (
	"errors"
	"testing"
)

type payload struct {
	EnhancedQuery string   `json:"enhancedQuery"`
	SearchTerms   []string `json:"searchTerms"`
}

func TestExtractObject_PlainJSON(t *testing.T) {
	var p payload
	err := ExtractObject(`{"enhancedQuery":"go dev","searchTerms":["go","golang"]}`, &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.EnhancedQuery != "go dev" || len(p.SearchTerms) != 2 {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestExtractObject_WrappedInProse(t *testing.T) {
	text := "Sure! Here is the JSON you asked for:\n```json\n" +
		`{"enhancedQuery":"backend engineer golang"}` +
		"\n```\nLet me know if you need anything else."

	var p payload
	if err := ExtractObject(text, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.EnhancedQuery != "backend engineer golang" {
		t.Errorf("unexpected enhanced query %q", p.EnhancedQuery)
	}
}

func TestExtractObject_NoPayload(t *testing.T) {
	var p payload
	err := ExtractObject("I could not produce a result, sorry.", &p)
	if !errors.Is(err, ErrNoPayload) {
		t.Errorf("expected ErrNoPayload, got %v", err)
	}
}

func TestExtractObject_MalformedJSON(t *testing.T) {
	var p payload
	if err := ExtractObject(`{"enhancedQuery": `+"unterminated}", &p); err == nil {
		t.Error("expected parse error")
	}
}

func TestExtractArray(t *testing.T) {
	var items []struct {
		UserID          string `json:"userId"`
		ConfidenceScore int    `json:"confidenceScore"`
	}
	text := `The ranked candidates are: [{"userId":"u-1","confidenceScore":85}] as requested.`
	if err := ExtractArray(text, &items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ConfidenceScore != 85 {
		t.Errorf("unexpected items: %+v", items)
	}
}
