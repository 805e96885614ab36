package stats

import (
	"fmt"
	"math"
)

// BucketBound is a half-open range [Lower, Upper) in hours.
type BucketBound struct {
	Label string  `json:"label" yaml:"label"`
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// DurationBucket is a fixed range with the number of values that fell in it.
type DurationBucket struct {
	BucketBound
	Count int `json:"count"`
}

// BucketResult classifies every input value. Values outside the bucket set
// are counted in Underflow or Overflow rather than dropped.
type BucketResult struct {
	Buckets   []DurationBucket `json:"buckets"`
	Underflow int              `json:"underflow"`
	Overflow  int              `json:"overflow"`
	Total     int              `json:"total"`
}

// DefaultResolutionBuckets are the doubling hour ranges from <1h to 64-128h.
func DefaultResolutionBuckets() []BucketBound {
	return []BucketBound{
		{Label: "<1h", Lower: 0, Upper: 1},
		{Label: "1-2h", Lower: 1, Upper: 2},
		{Label: "2-4h", Lower: 2, Upper: 4},
		{Label: "4-8h", Lower: 4, Upper: 8},
		{Label: "8-16h", Lower: 8, Upper: 16},
		{Label: "16-32h", Lower: 16, Upper: 32},
		{Label: "32-64h", Lower: 32, Upper: 64},
		{Label: "64-128h", Lower: 64, Upper: 128},
	}
}

// ValidateBuckets checks that bounds are non-empty, labelled, ascending and contiguous.
func ValidateBuckets(bounds []BucketBound) error {
	if len(bounds) == 0 {
		return fmt.Errorf("bucket set is empty")
	}
	for i, b := range bounds {
		if b.Label == "" {
			return fmt.Errorf("bucket %d has no label", i)
		}
		if !(b.Lower < b.Upper) {
			return fmt.Errorf("bucket %q: lower %v must be below upper %v", b.Label, b.Lower, b.Upper)
		}
		if i > 0 && bounds[i-1].Upper != b.Lower {
			return fmt.Errorf("bucket %q: lower %v does not continue previous upper %v", b.Label, b.Lower, bounds[i-1].Upper)
		}
	}
	return nil
}

// BucketDurations counts values into contiguous half-open buckets.
func BucketDurations(values []float64, bounds []BucketBound) BucketResult {
	res := BucketResult{
		Buckets: make([]DurationBucket, len(bounds)),
		Total:   len(values),
	}
	for i, b := range bounds {
		res.Buckets[i].BucketBound = b
	}
	if len(bounds) == 0 {
		res.Overflow = len(values)
		return res
	}

	lo, hi := bounds[0].Lower, bounds[len(bounds)-1].Upper
	for _, v := range values {
		switch {
		case math.IsNaN(v) || v < lo:
			res.Underflow++
		case v >= hi:
			res.Overflow++
		default:
			for i := range res.Buckets {
				if v < res.Buckets[i].Upper {
					res.Buckets[i].Count++
					break
				}
			}
		}
	}
	return res
}

// HistogramBin is one equal-width bin of a Histogram.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is a fixed-bin-count distribution over the observed range.
type Histogram struct {
	Min  float64        `json:"min"`
	Max  float64        `json:"max"`
	Bins []HistogramBin `json:"bins"`
}

// EqualWidthHistogram spreads values over bins equal-width bins spanning
// [min, max]. The maximum falls into the last bin. A degenerate range
// collapses to a single bin holding every value.
func EqualWidthHistogram(values []float64, bins int) Histogram {
	if len(values) == 0 || bins <= 0 {
		return Histogram{}
	}

	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}

	h := Histogram{Min: minV, Max: maxV}
	if minV == maxV {
		h.Bins = []HistogramBin{{Lower: minV, Upper: maxV, Count: len(values)}}
		return h
	}

	width := (maxV - minV) / float64(bins)
	h.Bins = make([]HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i].Lower = minV + float64(i)*width
		h.Bins[i].Upper = minV + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = maxV

	for _, v := range values {
		idx := int((v - minV) / width)
		if idx >= bins {
			idx = bins - 1
		}
		h.Bins[idx].Count++
	}
	return h
}
