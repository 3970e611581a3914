// Package reply assembles action fragments into the single outbound text.
package reply

import (
	"encoding/xml"
	"sort"
	"strings"

	"github.com/goaltext/goaltext/internal/actions"
)

// Fallback is sent when no action produced any text.
const Fallback = "Sorry, something went wrong on our end. Please try again in a bit."

// Fragment is one action's contribution to the reply.
type Fragment struct {
	Kind actions.Kind
	Text string
}

// FromOutcomes converts executor outcomes to fragments. Failed actions
// contribute nothing.
func FromOutcomes(outcomes []actions.Outcome) []Fragment {
	fragments := make([]Fragment, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		fragments = append(fragments, Fragment{Kind: o.Kind, Text: o.Text})
	}
	return fragments
}

// Compose joins non-empty fragments in action order, one per line. With
// nothing to say it returns Fallback.
func Compose(fragments []Fragment) string {
	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Kind < sorted[j].Kind })

	parts := make([]string, 0, len(sorted))
	for _, f := range sorted {
		if text := strings.TrimSpace(f.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return Fallback
	}
	return strings.Join(parts, "\n")
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message *string  `xml:"Message,omitempty"`
}

// TwiML wraps text in a messaging response document. Empty text produces an
// empty response, which sends nothing back to the handset.
func TwiML(text string) string {
	doc := twimlResponse{}
	if text != "" {
		doc.Message = &text
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return xml.Header + "<Response></Response>"
	}
	return xml.Header + string(out)
}
