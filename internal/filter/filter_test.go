package filter

import (
	"testing"

	"github.com/studiowebux/wsprobe/internal/logbook"
	"github.com/studiowebux/wsprobe/internal/types"
)

func sampleEntries() []logbook.Entry {
	log := logbook.New()
	log.System("Connected to ws://localhost:8080")
	log.Append(types.DirectionSent, `{"type": "subscribe", "channel": "prices"}`)
	log.Append(types.DirectionReceived, `{"type": "tick", "price": 42, "tags": []}`)
	log.Append(types.DirectionReceived, `{"type": "error", "code": 0}`)
	log.Append(types.DirectionReceived, "plain Hello text")
	return log.Snapshot()
}

func TestApply_Substring(t *testing.T) {
	got, err := Apply(sampleEntries(), "HELLO")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(got) != 1 || got[0].Text != "plain Hello text" {
		t.Errorf("Expected only the plain text entry, got %+v", got)
	}
}

func TestApply_Empty(t *testing.T) {
	entries := sampleEntries()
	got, err := Apply(entries, "  ")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Errorf("Expected %d entries, got %d", len(entries), len(got))
	}
}

func TestApply_JMESPath(t *testing.T) {
	tests := []struct {
		expr string
		want int
	}{
		{"jmes: type == 'tick'", 1},
		{"jmes:price", 1},
		{"jmes:code", 1}, // 0 is truthy
		{"jmes:tags", 0}, // empty array is falsy
		{"jmes:type", 3},
		{"jmes:missing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Apply(sampleEntries(), tt.expr)
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Expected %d entries, got %d", tt.want, len(got))
			}
			for _, e := range got {
				if e.Direction == types.DirectionSystem {
					t.Error("System entries must not match JMESPath filters")
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("anything goes"); err != nil {
		t.Errorf("Expected substring to validate, got %v", err)
	}
	if err := Validate("jmes:a.b"); err != nil {
		t.Errorf("Expected valid JMESPath, got %v", err)
	}
	if err := Validate("jmes:a[?"); err == nil {
		t.Error("Expected error for invalid JMESPath")
	}
	if err := Validate("jmes:"); err == nil {
		t.Error("Expected error for empty JMESPath")
	}
}

func TestExtract(t *testing.T) {
	got, err := Extract(`{"items":[{"name":"a"},{"name":"b"}]}`, "items[].name")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := "[\n  \"a\",\n  \"b\"\n]"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got, err = Extract(`{"a":1}`, "b")
	if err != nil || got != "null" {
		t.Errorf("Expected null, got %q (%v)", got, err)
	}

	if _, err := Extract("not json", "a"); err == nil {
		t.Error("Expected error for invalid JSON body")
	}
}
