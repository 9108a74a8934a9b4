package bookingref_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/skypark/bookings/pkg/bookingref"
)

func newCodec(t *testing.T) *bookingref.Codec {
	t.Helper()
	c, err := bookingref.New("test-salt")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newCodec(t)
	for _, id := range []int64{1, 2, 42, 999, 123456789} {
		ref, err := c.Encode(id)
		if err != nil {
			t.Fatalf("encode %d: %v", id, err)
		}
		if !strings.HasPrefix(ref, "SP-") || len(ref) < len("SP-")+6 {
			t.Fatalf("unexpected ref %q", ref)
		}

		forms := map[string]string{
			"as issued": ref,
			"lowercase": strings.ToLower(ref),
			"no prefix": strings.TrimPrefix(ref, "SP-"),
			"padded":    "  " + ref + " ",
		}
		for name, in := range forms {
			got, err := c.Decode(in)
			if err != nil {
				t.Fatalf("%s %q: %v", name, in, err)
			}
			if got != id {
				t.Fatalf("%s %q: decoded %d, want %d", name, in, got, id)
			}
		}
	}
}

func TestCodec_DistinctRefs(t *testing.T) {
	c := newCodec(t)
	a, _ := c.Encode(1)
	b, _ := c.Encode(2)
	if a == b {
		t.Fatalf("ids 1 and 2 share ref %q", a)
	}
}

func TestCodec_DecodeRejectsGarbage(t *testing.T) {
	c := newCodec(t)
	other, err := bookingref.New("other-salt")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	foreign, _ := other.Encode(7)

	tests := []struct {
		name string
		ref  string
	}{
		{"empty", ""},
		{"prefix only", "SP-"},
		{"punctuation", "SP-!!!!!!"},
		{"foreign salt", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id, err := c.Decode(tt.ref); !errors.Is(err, bookingref.ErrInvalidRef) {
				t.Fatalf("Decode(%q) = %d, %v; want ErrInvalidRef", tt.ref, id, err)
			}
		})
	}
}
