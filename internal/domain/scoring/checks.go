package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/okian/proofscore/internal/domain/record"
)

// CheckName identifies one check in a Report.
type CheckName string

// Check names in weighting order.
const (
	NameStructure       CheckName = "structure"
	NameHandleFormat    CheckName = "handle_format"
	NameDescription     CheckName = "description"
	NameFollowerCount   CheckName = "follower_count"
	NameFollowerHandles CheckName = "follower_handles"
)

// Criterion thresholds.
const (
	// Handle length window for the first handle criterion.
	minHandleRunes = 4
	maxHandleRunes = 15

	// minDescriptionWords is exclusive: more than two words are required.
	minDescriptionWords = 2

	// validFollowerHandle is the exclusive handle-format floor for counting
	// a follower entry as valid.
	validFollowerHandle = 0.5
)

// CheckResult is a named check value in [0,1].
type CheckResult struct {
	Name  CheckName `json:"name"  yaml:"name"`
	Value float64   `json:"value" yaml:"value"`
}

// CheckStructure awards a quarter point each for: all of handle, description
// and followers present; handle is text; description is text; followers is a
// sequence. Anything that is not a mapping scores 0.
func CheckStructure(data any) float64 {
	var rec record.Record
	switch v := data.(type) {
	case record.Record:
		rec = v
	case map[string]any:
		rec = record.Record(v)
	default:
		return 0
	}

	const total = 4
	points := 0
	if rec.Has(record.FieldHandle, record.FieldDescription, record.FieldFollowers) {
		points++
	}
	if record.IsText(rec[record.FieldHandle]) {
		points++
	}
	if record.IsText(rec[record.FieldDescription]) {
		points++
	}
	if record.IsSequence(rec[record.FieldFollowers]) {
		points++
	}
	return float64(points) / total
}

// CheckHandleFormat awards a fifth for each of: length in [4,15]; first
// character alphanumeric; only alphanumerics and underscores; non-blank;
// length within the configured maximum. The blank and length criteria overlap
// with the others and still count separately. An empty handle scores 0.
func (v *Validator) CheckHandleFormat(handle string) float64 {
	if handle == "" {
		return 0
	}

	const total = 5
	points := 0
	length := utf8.RuneCountInString(handle)

	if length >= minHandleRunes && length <= maxHandleRunes {
		points++
	}
	first, _ := utf8.DecodeRuneInString(handle)
	if isAlnum(first) {
		points++
	}
	if strings.IndexFunc(handle, func(r rune) bool { return !isAlnum(r) && r != '_' }) < 0 {
		points++
	}
	if !isBlank(handle) {
		points++
	}
	if length <= v.maxHandleLength {
		points++
	}
	return float64(points) / total
}

// CheckDescription awards a third for each of: non-blank; length within the
// configured maximum; more than two whitespace-separated words. An empty
// description scores 0.
func (v *Validator) CheckDescription(description string) float64 {
	if description == "" {
		return 0
	}

	const total = 3
	points := 0
	if !isBlank(description) {
		points++
	}
	if utf8.RuneCountInString(description) <= v.maxDescriptionLength {
		points++
	}
	if len(strings.FieldsFunc(description, isSpace)) > minDescriptionWords {
		points++
	}
	return float64(points) / total
}

// FollowerCountScore is 0 below the minimum follower count, then ramps
// linearly to 1.0 at the target count and stays there.
func (v *Validator) FollowerCountScore(followers []any) float64 {
	n := len(followers)
	if n == 0 || n < v.minFollowers {
		return 0
	}
	return min(float64(n)/float64(v.targetFollowers), 1.0)
}

// CheckFollowerHandles returns the fraction of follower entries that are
// non-blank text whose own handle-format value exceeds 0.5.
func (v *Validator) CheckFollowerHandles(followers []any) float64 {
	if len(followers) == 0 {
		return 0
	}

	valid := 0
	for _, f := range followers {
		handle, ok := f.(string)
		if !ok || isBlank(handle) {
			continue
		}
		if v.CheckHandleFormat(handle) > validFollowerHandle {
			valid++
		}
	}
	return float64(valid) / float64(len(followers))
}

// isAlnum matches letters and numeric characters in any script.
func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// isSpace is unicode.IsSpace plus the ASCII file, group, record and unit
// separators, which Unicode classes as paragraph and segment separators.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !isSpace(r) }) < 0
}
