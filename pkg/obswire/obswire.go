// Package obswire defines the JSON records a page capture layer emits while
// observing a scrolling feed. Capture bridges publish these records to the
// bus (or dump them to JSONL files); the sentinel agent consumes them.
package obswire

// Event type discriminators.
const (
	TypeSnapshot  = "snapshot"
	TypeAdded     = "added"
	TypeViewport  = "viewport"
	TypeLifecycle = "lifecycle"
)

// Lifecycle event names forwarded from the hosting platform.
const (
	LifecycleInstall = "install"
	LifecycleReload  = "reload"
)

// IDAttr is the attribute the capture layer stamps on every element it
// serializes. The minted value is opaque and unique per element.
const IDAttr = "data-obs-id"

// WidthAttr optionally carries an element's rendered width in CSS pixels.
// Serialized markup has no layout, so this is the only rendered-size signal.
const WidthAttr = "data-obs-w"

// SubjectEvents is the bus subject prefix capture bridges publish under.
// A page appends its own token, e.g. "feed.events.tab42".
const SubjectEvents = "feed.events"

// Event is one capture-layer record. Exactly one payload group is set,
// selected by Type.
type Event struct {
	Type string `json:"type"`

	// snapshot: the annotated feed root at attach time.
	HTML string `json:"html,omitempty"`

	// added: serialized subtrees appended to the document.
	Nodes []AddedNode `json:"nodes,omitempty"`

	// viewport: an element's visible-area ratio crossed a sampling tick.
	ID    string  `json:"id,omitempty"`
	Ratio float64 `json:"ratio,omitempty"`

	// lifecycle: an opaque platform trigger such as install or reload.
	Name string `json:"event,omitempty"`
}

// AddedNode is a single serialized subtree from an added event. WithinItem
// carries the id of the enclosing feed item when the insertion happened
// inside one.
type AddedNode struct {
	ID         string `json:"id"`
	HTML       string `json:"html"`
	WithinItem string `json:"within_item,omitempty"`
}
