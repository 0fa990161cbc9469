package timerange

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/forPelevin/wandlung/internal/types"
)

var ErrInvalid = errors.New("expected M:SS or MM:SS with seconds 00-59")

var clockRE = regexp.MustCompile(`^(\d+):(\d{1,2})$`)

// maxMinutes keeps minutes*60+59 within int.
const maxMinutes = (math.MaxInt - 59) / 60

// Parse converts "M:SS"/"MM:SS" into seconds. There is no hours part, so
// minutes are bounded only by int.
func Parse(text string) (int, error) {
	m := clockRE.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, fmt.Errorf("%q: %w", text, ErrInvalid)
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil || minutes > maxMinutes {
		return 0, fmt.Errorf("%q: %w", text, ErrInvalid)
	}
	seconds, _ := strconv.Atoi(m[2])
	if seconds > 59 {
		return 0, fmt.Errorf("%q: %w", text, ErrInvalid)
	}
	return minutes*60 + seconds, nil
}

// ParseRange validates both bounds independently. Empty text leaves the
// bound unset; invalid text yields a *types.FieldError per failing field.
func ParseRange(start, end string) (types.BurnRange, error) {
	var (
		rng  types.BurnRange
		errs []error
	)
	s, err := parseBound("start_seconds", start)
	if err != nil {
		errs = append(errs, err)
	}
	e, err := parseBound("end_seconds", end)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return types.BurnRange{}, errors.Join(errs...)
	}
	rng.StartSeconds, rng.EndSeconds = s, e
	return rng, nil
}

func parseBound(field, text string) (*int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	sec, err := Parse(text)
	if err != nil {
		return nil, &types.FieldError{Field: field, Reason: err.Error()}
	}
	return &sec, nil
}

// Format renders whole seconds as MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
