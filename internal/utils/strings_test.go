package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"+66 81-234 5678": "+66812345678",
		"(081) 234 5678":  "0812345678",
		"  ":              "",
		"66+1":            "661",
	}
	for in, want := range tests {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestSameEmail(t *testing.T) {
	if !SameEmail(" Ann@Example.com", "ann@example.com ") {
		t.Fatal("emails should match case-insensitively")
	}
	if SameEmail("", "") {
		t.Fatal("blank emails never match")
	}
	if SameEmail("a@example.com", "b@example.com") {
		t.Fatal("different emails matched")
	}
}

func TestNormalizeString(t *testing.T) {
	if got := NormalizeString("  Kata   Beach  Resort "); got != "Kata Beach Resort" {
		t.Fatalf("got %q", got)
	}
}
