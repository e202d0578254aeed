package motion

// Producer-side helpers for aligning sequences to a common length before
// scoring. Stride and target length are explicit parameters; there is no
// ambient frame counter.

// Downsample keeps every stride-th frame, starting from the first.
// A stride of 1 returns a copy of the input.
func Downsample(s Sequence, stride int) (Sequence, error) {
	if stride < 1 {
		return nil, NewKind("motion.downsample", ErrInvalidStride)
	}
	out := make(Sequence, 0, (len(s)+stride-1)/stride)
	for f := 0; f < len(s); f += stride {
		out = append(out, s[f])
	}
	return out, nil
}

// Resample maps the sequence onto n frames by nearest-index sampling.
// Frames are shared, not copied; treat the result as read-only.
func Resample(s Sequence, n int) (Sequence, error) {
	if n < 1 {
		return nil, NewKind("motion.resample", ErrInvalidLength)
	}
	if len(s) == 0 {
		return nil, NewKind("motion.resample", ErrEmptySequence)
	}
	out := make(Sequence, n)
	for i := 0; i < n; i++ {
		// Spread n output slots evenly over the source frames.
		src := i * len(s) / n
		out[i] = s[src]
	}
	return out, nil
}
