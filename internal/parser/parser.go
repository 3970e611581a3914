// Package parser turns inbound message text into a structured Request.
//
// The grammar is deliberately small. A whole-message keyword (YES, STOP, HELP,
// LIST) short-circuits everything else; otherwise each line is either a
// completion ("done: walk the dog"), a device pairing ("pair: abc123") or a new
// goal with an optional trailing point value ("Walk the dog - 5").
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// DefaultPoints is assigned to goals that carry no explicit point value.
const DefaultPoints = 1

// NewGoal is a goal line extracted from a message.
type NewGoal struct {
	Text   string `json:"goal_text"`
	Points int    `json:"points"`
}

// Request is the structured interpretation of one inbound message.
type Request struct {
	Signup    bool      `json:"signup,omitempty"`
	Help      bool      `json:"help,omitempty"`
	Stop      bool      `json:"stop,omitempty"`
	ListGoals bool      `json:"list_goals,omitempty"`
	NewGoals  []NewGoal `json:"new_goals,omitempty"`
	MarkDone  []string  `json:"mark_done,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"`
}

// Empty reports whether nothing was recognized.
func (r Request) Empty() bool {
	return !r.Signup && !r.Help && !r.Stop && !r.ListGoals &&
		len(r.NewGoals) == 0 && len(r.MarkDone) == 0 && r.DeviceID == ""
}

var (
	signupWords = map[string]struct{}{"yes": {}, "signup": {}, "sign up": {}}
	stopWords   = map[string]struct{}{"stop": {}, "unsubscribe": {}, "end": {}}
	listWords   = map[string]struct{}{"list": {}, "list goals": {}, "status": {}}

	doneLine = regexp.MustCompile(`(?i)^done(?:[\s:\-]+(.*))?$`)
	pairLine = regexp.MustCompile(`(?i)^(?:pair(?:\s+device)?|device)\s*[:\-]\s*(\S+)$`)

	// trailingPoints captures "<text> <sep?> <n> <unit?> <close?>" at line end.
	// The number must begin at a word boundary so "milk2" stays goal text.
	trailingPoints = regexp.MustCompile(`(?i)^(.*?)\s*(?:[-:(\[{]\s*|\bx\s*|\b)(\d+)\s*(?:pts?|points?)?\s*[)\]}]?\s*$`)
)

// Parse interprets message. It never fails; unrecognized input yields an
// empty Request.
func Parse(message string) Request {
	var req Request

	switch cmd := normalizeCommand(message); {
	case contains(signupWords, cmd):
		req.Signup = true
		return req
	case contains(stopWords, cmd):
		req.Stop = true
		return req
	case cmd == "help":
		req.Help = true
		return req
	case contains(listWords, cmd):
		req.ListGoals = true
		return req
	}

	for _, raw := range strings.Split(message, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := doneLine.FindStringSubmatch(line); m != nil {
			if target := collapseSpace(m[1]); target != "" {
				req.MarkDone = append(req.MarkDone, target)
			}
			continue
		}

		// An all-digit id reads as a point value, so "Pair - 2" stays a goal.
		if m := pairLine.FindStringSubmatch(line); m != nil && !allDigits(m[1]) {
			req.DeviceID = m[1]
			continue
		}

		if goal, ok := parseGoal(line); ok {
			req.NewGoals = append(req.NewGoals, goal)
		}
	}

	return req
}

func parseGoal(line string) (NewGoal, bool) {
	text, points := line, DefaultPoints
	if m := trailingPoints.FindStringSubmatch(line); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			text, points = m[1], n
		}
	}
	text = collapseSpace(text)
	if text == "" {
		return NewGoal{}, false
	}
	return NewGoal{Text: text, Points: points}, true
}

// normalizeCommand lowercases s, drops everything except letters, digits and
// whitespace, and collapses runs of whitespace.
func normalizeCommand(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
	return collapseSpace(stripped)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func allDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

func contains(set map[string]struct{}, s string) bool {
	_, ok := set[s]
	return ok
}
