package yield

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNotesYield(t *testing.T) {
	tests := []struct {
		name   string
		notes  string
		want   notesYield
		wantOK bool
	}{
		{name: "thai from-to", notes: "จาก 0 ลูก เป็น 12 ลูก", want: notesYield{previous: 0, hasPrevious: true, next: 12}, wantOK: true},
		{name: "thai digits", notes: "จาก ๓ ลูก เป็น ๑๐ ลูก", want: notesYield{previous: 3, hasPrevious: true, next: 10}, wantOK: true},
		{name: "full-width digits", notes: "จาก １５ ลูก เป็น ２０ ลูก", want: notesYield{previous: 15, hasPrevious: true, next: 20}, wantOK: true},
		{name: "english", notes: "Yield changed from 1,200 to 1,350 after recount", want: notesYield{previous: 1200, hasPrevious: true, next: 1350}, wantOK: true},
		{name: "arrow", notes: "40 ลูก → 38 ลูก", want: notesYield{previous: 40, hasPrevious: true, next: 38}, wantOK: true},
		{name: "new only thai", notes: "ปรับเป็น 25 ลูก", want: notesYield{next: 25}, wantOK: true},
		{name: "new only english", notes: "updated to 9", want: notesYield{next: 9}, wantOK: true},
		{name: "labelled", notes: "new yield = 17", want: notesYield{next: 17}, wantOK: true},
		{name: "html notes", notes: "<p>updated from 12</p><p>to 20</p>", want: notesYield{previous: 12, hasPrevious: true, next: 20}, wantOK: true},
		{name: "html line break", notes: "<div>จาก <b>8</b> ลูก<br>เป็น <b>11</b> ลูก</div>", want: notesYield{previous: 8, hasPrevious: true, next: 11}, wantOK: true},
		{name: "thai number between endpoints", notes: "ปรับจาก 10 ลูก (ร่วง 2) เป็น 8 ลูก", want: notesYield{previous: 10, hasPrevious: true, next: 8}, wantOK: true},
		{name: "english number between endpoints", notes: "from 30 (lost 4 in storm) to 26", want: notesYield{previous: 30, hasPrevious: true, next: 26}, wantOK: true},
		{name: "previous without new value", notes: "จาก 10 ลูก ยังไม่ได้นับใหม่ แต่คาดว่าจะเป็น", wantOK: false},
		{name: "previous too far from new value", notes: "from 10 fruits, recount pending after the storm damaged the east rows, set to 4", wantOK: false},
		{name: "no number", notes: "ต้นนี้ติดผลดี", wantOK: false},
		{name: "empty", notes: "", wantOK: false},
		{name: "overflow", notes: "from 1 to 99999999999999999999999", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseNotesYield(tt.notes)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseNotesReason(t *testing.T) {
	assert.Equal(t, "ลูกร่วงจากพายุ", parseNotesReason("จาก 30 ลูก เป็น 22 ลูก (เหตุผล: ลูกร่วงจากพายุ)"))
	assert.Equal(t, "fruit fly damage", parseNotesReason("from 10 to 6, reason: fruit fly damage"))
	assert.Equal(t, "", parseNotesReason("from 10 to 12"))
	assert.Equal(t, "ลูกร่วง", parseNotesReason("<p>จาก 9 เป็น 7</p><p>เหตุผล: ลูกร่วง</p>"))
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "yield < 10 today", stripMarkup("yield < 10 today"))
	assert.Equal(t, "plain", stripMarkup("plain"))
	assert.Equal(t, "a\nb\n", stripMarkup("<p>a</p><p>b</p>"))
}
