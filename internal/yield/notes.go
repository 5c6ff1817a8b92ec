package yield

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Patterns carrying both endpoints, tried in order. The gap between them
// may hold other numbers, e.g. "จาก 10 ลูก (ร่วง 2) เป็น 8 ลูก".
var fromToPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)จาก\s*(\d+).{0,40}?เป็น\s*(\d+)`),
	regexp.MustCompile(`(?is)\bfrom\s+(\d+).{0,40}?\bto\s+(\d+)`),
	regexp.MustCompile(`(\d+)\D{0,16}?(?:->|→|=>)\s*(\d+)`),
}

// fromAnchor marks notes that name a previous value. When it matches but no
// pair does, the new-only forms would invent a zero baseline.
var fromAnchor = regexp.MustCompile(`(?i)(?:จาก\s*|\bfrom\s+)\d+`)

// Patterns carrying only the new value.
var newOnlyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`เป็น\s*(\d+)`),
	regexp.MustCompile(`(?i)\bto\s+(\d+)`),
	regexp.MustCompile(`(?i)(?:new yield|yield|ผลผลิต(?:ใหม่)?)\s*[:=]\s*(\d+)`),
}

var (
	reasonPattern    = regexp.MustCompile(`(?i)(?:เหตุผล|reason|because)\s*:?\s*([^)\n]+)`)
	thousandsPattern = regexp.MustCompile(`(\d),(\d{3})`)
)

// notesYield is what could be recovered from free-text notes.
type notesYield struct {
	previous    int
	hasPrevious bool
	next        int
}

// stripMarkup returns the text of notes saved from a rich-text editor. Line
// breaks and block boundaries become newlines so words on either side stay
// apart. Plain notes are returned unchanged.
func stripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr").AfterHtml("\n")
	return doc.Text()
}

// normalizeNotes strips markup, folds compatibility forms (full-width digits
// and colons), maps Thai digits to ASCII and drops thousands separators.
func normalizeNotes(s string) string {
	s = norm.NFKC.String(stripMarkup(s))
	s = strings.Map(func(r rune) rune {
		if r >= '๐' && r <= '๙' {
			return '0' + (r - '๐')
		}
		return r
	}, s)
	for {
		next := thousandsPattern.ReplaceAllString(s, "$1$2")
		if next == s {
			return s
		}
		s = next
	}
}

// parseNotesYield recovers yield values from notes. ok is false when no
// pattern matches, a number does not fit an int, or a previous value is
// named without a matching new value.
func parseNotesYield(notes string) (notesYield, bool) {
	text := normalizeNotes(notes)
	if strings.TrimSpace(text) == "" {
		return notesYield{}, false
	}

	for _, re := range fromToPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		prev, err1 := strconv.Atoi(m[1])
		next, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			return notesYield{}, false
		}
		return notesYield{previous: prev, hasPrevious: true, next: next}, true
	}
	if fromAnchor.MatchString(text) {
		return notesYield{}, false
	}

	for _, re := range newOnlyPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		next, err := strconv.Atoi(m[1])
		if err != nil {
			return notesYield{}, false
		}
		return notesYield{next: next}, true
	}
	return notesYield{}, false
}

// parseNotesReason returns the text following a reason keyword.
func parseNotesReason(notes string) string {
	m := reasonPattern.FindStringSubmatch(norm.NFKC.String(stripMarkup(notes)))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
