package filter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/birbparty/commerce-sdk/sdk/model"
)

// Range is an interval with optional bounds. A missing bound is open and
// renders as "*". A Range with neither bound is empty and is never
// rendered.
type Range[T any] struct {
	Lower *T
	Upper *T
}

// Between returns the closed range [lower, upper].
func Between[T any](lower, upper T) Range[T] {
	return Range[T]{Lower: &lower, Upper: &upper}
}

// AtLeast returns the range [lower, *).
func AtLeast[T any](lower T) Range[T] {
	return Range[T]{Lower: &lower}
}

// AtMost returns the range (*, upper].
func AtMost[T any](upper T) Range[T] {
	return Range[T]{Upper: &upper}
}

// IsEmpty reports whether neither bound is set.
func (r Range[T]) IsEmpty() bool {
	return r.Lower == nil && r.Upper == nil
}

// Format renders the range as "(<lower> to <upper>)" using format for each
// present bound.
func (r Range[T]) Format(format func(T) string) string {
	return "(" + bound(r.Lower, format) + " to " + bound(r.Upper, format) + ")"
}

func bound[T any](v *T, format func(T) string) string {
	if v == nil {
		return "*"
	}
	return format(*v)
}

// joinRanges renders the non-empty ranges comma separated. The second
// result is false when nothing was left to render.
func joinRanges[T any](ranges []Range[T], format func(T) string) (string, bool) {
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if r.IsEmpty() {
			continue
		}
		parts = append(parts, r.Format(format))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ","), true
}

// centsRange converts both bounds of a money range into minor units.
func centsRange(r Range[decimal.Decimal]) Range[int64] {
	var out Range[int64]
	if r.Lower != nil {
		v := model.MinorUnits(*r.Lower)
		out.Lower = &v
	}
	if r.Upper != nil {
		v := model.MinorUnits(*r.Upper)
		out.Upper = &v
	}
	return out
}
