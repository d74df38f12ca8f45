package cards

import (
	"regexp"
	"strings"

	types "github.com/yungbote/qsl-cards-backend/internal/domain/cards"
)

// Syntactic only; 2024-13-45 passes.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks every rule and reports all failures at once as a
// *types.ValidationError.
func Validate(role types.Role, c types.Card) error {
	var problems []string

	if strings.TrimSpace(c.CallSign) == "" {
		problems = append(problems, "callSign is required")
	}
	if strings.TrimSpace(c.MyCallSign) == "" {
		problems = append(problems, "myCallSign is required")
	}
	if !datePattern.MatchString(c.Date) {
		problems = append(problems, "date must be in YYYY-MM-DD format")
	}
	if strings.TrimSpace(c.Mode) == "" {
		problems = append(problems, "mode is required")
	}
	if c.CardType != types.CardTypeOnline && c.CardType != types.CardTypePhysical {
		problems = append(problems, "cardType must be online or physical")
	}

	switch role {
	case types.RoleReceived:
		if c.Status != "" && c.Status != types.StatusReceived && c.Status != types.StatusVerified {
			problems = append(problems, "status must be received or verified")
		}
	default:
		if c.Status != types.StatusPending && c.Status != types.StatusSent {
			problems = append(problems, "status must be pending or sent")
		}
	}

	if len(problems) > 0 {
		return &types.ValidationError{Problems: problems}
	}
	return nil
}
