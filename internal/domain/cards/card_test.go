package cards

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestCardPreservesUnknownFields(t *testing.T) {
	in := []byte(`{"id":"a1","callSign":"JA1ABC","mode":"CW","rst":"599","qth":{"grid":"PM95"}}`)

	var c Card
	if err := json.Unmarshal(in, &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.ID != "a1" || c.CallSign != "JA1ABC" || c.Mode != "CW" {
		t.Fatalf("known fields: got=%+v", c)
	}
	if string(c.Extra["rst"]) != `"599"` {
		t.Fatalf("extra rst: want=%q got=%q", `"599"`, c.Extra["rst"])
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var round map[string]any
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("Unmarshal round trip: %v", err)
	}
	qth, ok := round["qth"].(map[string]any)
	if !ok || qth["grid"] != "PM95" {
		t.Fatalf("qth: got=%v", round["qth"])
	}
	if _, ok := round["status"]; ok {
		t.Fatalf("empty status should be omitted")
	}
}

func TestCardTimestampsRoundTrip(t *testing.T) {
	ts := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
	c := Card{ID: "x", CreatedAt: ts, UpdatedAt: ts.Add(time.Minute)}

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Card
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.CreatedAt.Equal(ts) || !back.UpdatedAt.Equal(ts.Add(time.Minute)) {
		t.Fatalf("timestamps: got created=%v updated=%v", back.CreatedAt, back.UpdatedAt)
	}
}

func TestCardAcceptsNumericID(t *testing.T) {
	var c Card
	if err := json.Unmarshal([]byte(`{"id":1700000000000}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.ID != "1700000000000" {
		t.Fatalf("id: want=%q got=%q", "1700000000000", c.ID)
	}
}

func TestDecodeCollection(t *testing.T) {
	got, err := DecodeCollection([]byte("  \n"))
	if err != nil || len(got) != 0 {
		t.Fatalf("whitespace: want empty got=%v err=%v", got, err)
	}

	if _, err := DecodeCollection([]byte(`{"id":"a"}`)); !errors.Is(err, ErrNotSequence) {
		t.Fatalf("object: want ErrNotSequence got=%v", err)
	}

	got, err = DecodeCollection([]byte(`[{"id":"a"},{"id":"b"}]`))
	if err != nil {
		t.Fatalf("DecodeCollection: %v", err)
	}
	if len(got) != 2 || got[1].ID != "b" {
		t.Fatalf("order: got=%v", got)
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(" Received "); err != nil || r != RoleReceived {
		t.Fatalf("ParseRole: got=%q err=%v", r, err)
	}
	if _, err := ParseRole(""); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("empty role: want ErrInvalidRole got=%v", err)
	}
	if RoleFromFlag("") != RoleSent || RoleFromFlag("received") != RoleReceived {
		t.Fatalf("RoleFromFlag defaults wrong")
	}
}

func TestCardKeepsUnparsedTimestamps(t *testing.T) {
	in := []byte(`{"id":"a1","createdAt":"15/01/2024","updatedAt":"2024-01-16 08:00:00"}`)

	var c Card
	if err := json.Unmarshal(in, &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !c.CreatedAt.IsZero() {
		t.Fatalf("createdAt: want zero got=%v", c.CreatedAt)
	}
	if want := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC); !c.UpdatedAt.Equal(want) {
		t.Fatalf("updatedAt: want=%v got=%v", want, c.UpdatedAt)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var round map[string]any
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("Unmarshal round trip: %v", err)
	}
	if round["createdAt"] != "15/01/2024" {
		t.Fatalf("createdAt: want=%q got=%v", "15/01/2024", round["createdAt"])
	}
	if round["updatedAt"] != "2024-01-16T08:00:00Z" {
		t.Fatalf("updatedAt: want=%q got=%v", "2024-01-16T08:00:00Z", round["updatedAt"])
	}

	c.CreatedAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	out, err = json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if round["createdAt"] != "2024-02-01T00:00:00Z" {
		t.Fatalf("createdAt after set: got=%v", round["createdAt"])
	}
}
