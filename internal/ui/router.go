package ui

// ViewState identifies one of the mutually exclusive top-level views.
type ViewState int

const (
	HomeView ViewState = iota
	UploadView
	ProjectView
)

func (v ViewState) String() string {
	switch v {
	case HomeView:
		return "home"
	case UploadView:
		return "upload"
	case ProjectView:
		return "project"
	default:
		return ""
	}
}

func (v ViewState) valid() bool {
	return v >= HomeView && v <= ProjectView
}

// Router tracks which view is visible. Exactly one view is visible at any time.
type Router struct {
	current ViewState
}

// NewRouter returns a [Router] showing [HomeView].
func NewRouter() *Router {
	return &Router{current: HomeView}
}

// Show makes target the only visible view. Unknown targets are ignored.
func (r *Router) Show(target ViewState) {
	if !target.valid() {
		return
	}
	r.current = target
}

// Visible reports whether v is the visible view.
func (r *Router) Visible(v ViewState) bool {
	return r.current == v
}

// Current returns the visible view.
func (r *Router) Current() ViewState {
	return r.current
}
