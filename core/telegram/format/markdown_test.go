package format

import "testing"

func TestEscapeMarkdownV1(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"snake_case tag", `snake\_case tag`},
		{"star*and[bracket", `star\*and\[bracket`},
		{"back`tick", "back\\`tick"},
	}
	for _, tc := range cases {
		got, err := EscapeMarkdown(tc.in, MarkdownV1, "")
		if err != nil {
			t.Fatalf("escape %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("escape %q = %q, expected %q", tc.in, got, tc.want)
		}
	}
}

func TestEscapeMarkdownV2KeepsCharacter(t *testing.T) {
	got, err := EscapeMarkdown("a.b", MarkdownV2, "")
	if err != nil {
		t.Fatalf("escape: %v", err)
	}
	if got != `a\.b` {
		t.Fatalf("escape = %q, expected %q", got, `a\.b`)
	}
}

func TestEscapeMarkdownUnsupportedVersion(t *testing.T) {
	if _, err := EscapeMarkdown("x", 3, ""); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}
