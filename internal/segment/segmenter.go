// Package segment splits normalized input text into candidate item
// segments. Manual input splits on list separators; OCR input splits per
// receipt line with a deny-list filter for non-item lines.
package segment

import (
	"regexp"
	"strings"

	"github.com/herbwise/basil/internal/model"
)

// manualSeparators matches the clause boundaries of typed shopping text.
var manualSeparators = regexp.MustCompile(`,|;|\n|\band\b|&`)

// minSegmentLen filters out fragments too short to name an item.
const minSegmentLen = 2

// Segmenter produces ordered item segments from normalized text.
type Segmenter struct {
	denyWords []string
}

// New creates a Segmenter. denyWords are lowercase substrings that mark an
// OCR line as a non-item line (totals, tax, store header/footer).
func New(denyWords []string) *Segmenter {
	return &Segmenter{denyWords: denyWords}
}

// Split returns the candidate item segments of text, each tagged with its
// origin offsets. An empty result is a legitimate "nothing extracted"
// outcome, not an error.
func (s *Segmenter) Split(text string, source model.Source) []model.Segment {
	if source == model.SourceOCR {
		return s.splitReceipt(text)
	}
	return s.splitManual(text)
}

func (s *Segmenter) splitManual(text string) []model.Segment {
	var segments []model.Segment

	start := 0
	boundaries := manualSeparators.FindAllStringIndex(text, -1)
	boundaries = append(boundaries, []int{len(text), len(text)})

	for _, b := range boundaries {
		if seg, ok := trimSegment(text, start, b[0]); ok {
			segments = append(segments, seg)
		}
		start = b[1]
	}

	return segments
}

func (s *Segmenter) splitReceipt(text string) []model.Segment {
	var segments []model.Segment

	offset := 0
	for _, line := range strings.Split(text, "\n") {
		lineStart := offset
		offset += len(line) + 1

		if s.isDenied(line) {
			continue
		}
		if seg, ok := trimSegment(text, lineStart, lineStart+len(line)); ok {
			segments = append(segments, seg)
		}
	}

	return segments
}

func (s *Segmenter) isDenied(line string) bool {
	for _, word := range s.denyWords {
		if strings.Contains(line, word) {
			return true
		}
	}
	return false
}

// trimSegment narrows [start,end) to its non-space core and reports whether
// anything usable remains.
func trimSegment(text string, start, end int) (model.Segment, bool) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}

	if end-start < minSegmentLen {
		return model.Segment{}, false
	}

	return model.Segment{
		Text:  text[start:end],
		Start: start,
		End:   end,
	}, true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
