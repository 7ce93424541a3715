package tracking

// speedWindow is a fixed-capacity ring of speed samples with a running sum
// for the windowed average, plus the session maximum which is monotonic and
// outlives evicted samples.
type speedWindow struct {
	samples []float64
	next    int
	count   int
	sum     float64
	max     float64
}

func newSpeedWindow(capacity int) *speedWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &speedWindow{samples: make([]float64, capacity)}
}

func (w *speedWindow) Push(v float64) {
	if w.count == len(w.samples) {
		w.sum -= w.samples[w.next]
	} else {
		w.count++
	}
	w.samples[w.next] = v
	w.sum += v
	w.next = (w.next + 1) % len(w.samples)
	if v > w.max {
		w.max = v
	}
}

func (w *speedWindow) Average() float64 {
	if w.count == 0 {
		return 0
	}
	return w.sum / float64(w.count)
}

func (w *speedWindow) Max() float64 {
	return w.max
}

func (w *speedWindow) Reset() {
	w.next = 0
	w.count = 0
	w.sum = 0
	w.max = 0
}
