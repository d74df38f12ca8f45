package cards

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleSent     Role = "sent"
	RoleReceived Role = "received"
)

const (
	CardTypeOnline   = "online"
	CardTypePhysical = "physical"

	StatusPending  = "pending"
	StatusSent     = "sent"
	StatusReceived = "received"
	StatusVerified = "verified"
)

// ParseRole requires an explicit role name.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleSent:
		return RoleSent, nil
	case RoleReceived:
		return RoleReceived, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

// RoleFromFlag defaults to sent unless the flag names the received role.
func RoleFromFlag(raw string) Role {
	if Role(strings.ToLower(strings.TrimSpace(raw))) == RoleReceived {
		return RoleReceived
	}
	return RoleSent
}

// Card is one contact-confirmation record. Known fields are typed; anything
// else the caller sent is kept in Extra and written back unchanged.
type Card struct {
	ID         string
	CallSign   string
	MyCallSign string
	Date       string
	Mode       string
	CardType   string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Extra map[string]json.RawMessage
}

var knownFields = map[string]struct{}{
	"id":         {},
	"callSign":   {},
	"myCallSign": {},
	"date":       {},
	"mode":       {},
	"cardType":   {},
	"status":     {},
	"createdAt":  {},
	"updatedAt":  {},
}

func (c Card) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+len(knownFields))
	for k, v := range c.Extra {
		if _, known := knownFields[k]; known && !c.keepsRawTime(k) {
			continue
		}
		out[k] = v
	}
	putString(out, "id", c.ID)
	putString(out, "callSign", c.CallSign)
	putString(out, "myCallSign", c.MyCallSign)
	putString(out, "date", c.Date)
	putString(out, "mode", c.Mode)
	putString(out, "cardType", c.CardType)
	putString(out, "status", c.Status)
	if !c.CreatedAt.IsZero() {
		out["createdAt"] = c.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !c.UpdatedAt.IsZero() {
		out["updatedAt"] = c.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

func putString(out map[string]any, key, val string) {
	if val != "" {
		out[key] = val
	}
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var card Card
	for k, v := range raw {
		var err error
		switch k {
		case "id":
			err = decodeString(v, &card.ID)
		case "callSign":
			err = decodeString(v, &card.CallSign)
		case "myCallSign":
			err = decodeString(v, &card.MyCallSign)
		case "date":
			err = decodeString(v, &card.Date)
		case "mode":
			err = decodeString(v, &card.Mode)
		case "cardType":
			err = decodeString(v, &card.CardType)
		case "status":
			err = decodeString(v, &card.Status)
		case "createdAt":
			if !decodeTime(v, &card.CreatedAt) {
				card.keepRaw(k, v)
			}
		case "updatedAt":
			if !decodeTime(v, &card.UpdatedAt) {
				card.keepRaw(k, v)
			}
		default:
			card.keepRaw(k, v)
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	*c = card
	return nil
}

// decodeString tolerates numeric ids written by older clients.
func decodeString(v json.RawMessage, dst *string) error {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil
	}
	if v[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return err
		}
		*dst = n.String()
		return nil
	}
	return json.Unmarshal(v, dst)
}

func (c *Card) keepRaw(k string, v json.RawMessage) {
	if c.Extra == nil {
		c.Extra = make(map[string]json.RawMessage)
	}
	c.Extra[k] = append(json.RawMessage(nil), v...)
}

// keepsRawTime reports whether a timestamp field is only held in its
// original unparsed form.
func (c Card) keepsRawTime(k string) bool {
	switch k {
	case "createdAt":
		return c.CreatedAt.IsZero()
	case "updatedAt":
		return c.UpdatedAt.IsZero()
	}
	return false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// decodeTime reports false when v holds a value none of timeLayouts accept.
// Empty and null values decode to the zero time.
func decodeTime(v json.RawMessage, dst *time.Time) bool {
	var s string
	if err := decodeString(v, &s); err != nil {
		return false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*dst = t
			return true
		}
	}
	return false
}

// DecodeCollection parses a serialized collection. Anything other than a JSON
// array (or an empty document) is rejected with ErrNotSequence.
func DecodeCollection(data []byte) ([]Card, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Card{}, nil
	}
	if trimmed[0] != '[' {
		return nil, ErrNotSequence
	}
	out := []Card{}
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return out, nil
}
