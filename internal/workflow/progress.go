package workflow

// DisplayCap is the highest percentage shown before the real request settles.
const DisplayCap = 90.0

const (
	MsgScraping   = "Scraping Project Data..."
	MsgMedia      = "Downloading High-Res Images..."
	MsgFinalizing = "Finalizing Archive..."
)

// Estimate is a synthetic progress percentage that only ever moves forward.
//
// It has no relationship to real server progress.
type Estimate struct {
	value float64
	done  bool
}

// Advance adds step to the estimate while it is below [DisplayCap] and returns the displayed value.
// Negative steps are ignored.
func (e *Estimate) Advance(step float64) float64 {
	if !e.done && step > 0 && e.value < DisplayCap {
		e.value += step
	}
	return e.Display()
}

// Complete jumps the estimate to 100.
func (e *Estimate) Complete() {
	e.done = true
	e.value = 100
}

// Value is the raw accumulated estimate, which may overshoot [DisplayCap] by one step.
func (e *Estimate) Value() float64 {
	return e.value
}

// Display is the percentage to render.
func (e *Estimate) Display() float64 {
	if e.done {
		return 100
	}
	return min(e.value, DisplayCap)
}

// Done reports whether [Estimate.Complete] was called.
func (e *Estimate) Done() bool {
	return e.done
}

// Milestone returns the status message for a raw estimate, or "" when the current message should stay.
func Milestone(value float64) string {
	switch {
	case value > 10 && value < 40:
		return MsgScraping
	case value > 40 && value < 70:
		return MsgMedia
	case value > 70:
		return MsgFinalizing
	default:
		return ""
	}
}
