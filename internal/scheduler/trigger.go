package scheduler

// Trigger is the kind of change that asks for a layout recalculation.
type Trigger int

const (
	// TriggerContent is an edit to resume content.
	TriggerContent Trigger = iota
	// TriggerSections is a change to the active section list or its order.
	TriggerSections
	// TriggerTemplate is a template or style preference change.
	TriggerTemplate
	// TriggerRender is a change notification from the rendering layer after a re-render.
	TriggerRender
)

func (t Trigger) String() string {
	switch t {
	case TriggerContent:
		return "content"
	case TriggerSections:
		return "sections"
	case TriggerTemplate:
		return "template"
	case TriggerRender:
		return "render"
	default:
		return "unknown"
	}
}
