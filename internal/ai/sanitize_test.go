package ai

import "testing"

func TestSanitizeJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Sure! Here is the data:\n{\"a\":{\"b\":2}}\nLet me know.", `{"a":{"b":2}}`},
		{"fence then prose", "```json\n{\"a\":1}\n```\nHope this helps", `{"a":1}`},
		{"no json", "I could not find anything.", `{}`},
		{"empty", "", `{}`},
		{"truncated", `{"child": {"firstName": "Ann"`, `{"child": {"firstName": "Ann"`},
	}
	for _, tc := range cases {
		if got := SanitizeJSON(tc.in); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestExtractJSONReportsMissingObject(t *testing.T) {
	if _, ok := ExtractJSON("no braces here"); ok {
		t.Fatalf("expected ok=false when the reply has no object")
	}
	if _, ok := ExtractJSON("```json\n{}\n```"); !ok {
		t.Fatalf("expected ok=true for an empty fenced object")
	}
}
