package llmtext

import (
	"encoding/json"
	"errors"
	"testing"
)

// ─── SalvageJSON ───

func TestSalvageJSONDirect(t *testing.T) {
	raw, err := SalvageJSON(`  [{"question": "What is Go?"}]  `)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if len(items) != 1 || items[0]["question"] != "What is Go?" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestSalvageJSONFencedBlock(t *testing.T) {
	input := "Here is your quiz:\n```json\n[{\"id\": \"q1\"}]\n```\nEnjoy!"
	raw, err := SalvageJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `[{"id": "q1"}]` {
		t.Fatalf("got %q", raw)
	}
}

func TestSalvageJSONFenceWithoutLanguage(t *testing.T) {
	input := "```\n{\"summary\": \"ok\"}\n```"
	raw, err := SalvageJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"summary": "ok"}` {
		t.Fatalf("got %q", raw)
	}
}

func TestSalvageJSONBracketSlice(t *testing.T) {
	input := `Sure! The questions are [{"id": "q1"}, {"id": "q2"}] as requested.`
	raw, err := SalvageJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
}

func TestSalvageJSONObjectSlice(t *testing.T) {
	input := `The summary: {"summary": "short", "takeaways": []} done.`
	raw, err := SalvageJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if obj["summary"] != "short" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestSalvageJSONArrayBeforeObject(t *testing.T) {
	// The earlier opener decides which bracket pair is sliced.
	input := `noise ["a", {"b": 1}] trailing`
	raw, err := SalvageJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err != nil {
		t.Fatalf("expected an array, got %q: %v", raw, err)
	}
}

func TestSalvageJSONNoJSON(t *testing.T) {
	_, err := SalvageJSON("I'm sorry, I cannot generate questions for that.")
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("want ErrNoJSON, got %v", err)
	}
}

func TestSalvageJSONUnbalancedGarbage(t *testing.T) {
	_, err := SalvageJSON("broken [ output without a close")
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("want ErrNoJSON, got %v", err)
	}
}
