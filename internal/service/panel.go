package service

// PanelState is the outcome of one loader run.
type PanelState string

const (
	PanelReady  PanelState = "ready"
	PanelEmpty  PanelState = "empty"
	PanelFailed PanelState = "failed"
)

// PanelTexts are the placeholders a panel shows instead of items.
type PanelTexts struct {
	Empty  string
	Failed string
}

// Panel is the rendered state of one container: items, or a "no data"
// placeholder, or an error placeholder. Never more than one of those.
type Panel[T any] struct {
	Items   []T
	State   PanelState
	Message string
}

// NewPanel derives a panel from a loader result.
func NewPanel[T any](items []T, err error, texts PanelTexts) Panel[T] {
	switch {
	case err != nil:
		return Panel[T]{State: PanelFailed, Message: texts.Failed}
	case len(items) == 0:
		return Panel[T]{State: PanelEmpty, Message: texts.Empty}
	default:
		return Panel[T]{Items: items, State: PanelReady}
	}
}

func (p Panel[T]) Ready() bool { return p.State == PanelReady }
func (p Panel[T]) Empty() bool { return p.State == PanelEmpty }
func (p Panel[T]) Failed() bool { return p.State == PanelFailed }

// Loaded reports whether the panel has been through a loader at all.
func (p Panel[T]) Loaded() bool { return p.State != "" }
