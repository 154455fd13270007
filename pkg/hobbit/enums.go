package hobbit

import (
	"fmt"
	"strings"
)

// InteractionType says what the host does with the model output.
type InteractionType int

const (
	AppendCursor InteractionType = iota
	AppendCursorStream
	OutputFile
	ReplaceSelection
	ReplaceCurrentFile
	InsertBeforeSelection
	RunPanel
	OnPaste
	ChatPanel
	StreamDiff
	RightPanel
)

var interactionNames = [...]string{
	AppendCursor:          "AppendCursor",
	AppendCursorStream:    "AppendCursorStream",
	OutputFile:            "OutputFile",
	ReplaceSelection:      "ReplaceSelection",
	ReplaceCurrentFile:    "ReplaceCurrentFile",
	InsertBeforeSelection: "InsertBeforeSelection",
	RunPanel:              "RunPanel",
	OnPaste:               "OnPaste",
	ChatPanel:             "ChatPanel",
	StreamDiff:            "StreamDiff",
	RightPanel:            "RightPanel",
}

func (i InteractionType) String() string {
	if int(i) < len(interactionNames) {
		return interactionNames[i]
	}
	return fmt.Sprintf("InteractionType(%d)", int(i))
}

// InteractionTypes lists every interaction in declaration order.
func InteractionTypes() []InteractionType {
	out := make([]InteractionType, len(interactionNames))
	for i := range interactionNames {
		out[i] = InteractionType(i)
	}
	return out
}

// ParseInteractionType accepts the enum name in any case.
func ParseInteractionType(s string) (InteractionType, error) {
	for i, name := range interactionNames {
		if normalize(name) == normalize(s) {
			return InteractionType(i), nil
		}
	}
	return RunPanel, fmt.Errorf("unknown interaction %q", s)
}

// ActionLocation says where the host surfaces the action.
type ActionLocation int

const (
	ContextMenu ActionLocation = iota
	IntentionMenu
	TerminalMenu
	CommitMenu
	RunPanelLocation
	ChatBox
	InputBox
	DatabaseMenu
	ConsoleMenu
	VcsLog
)

var locationNames = [...]string{
	ContextMenu:      "ContextMenu",
	IntentionMenu:    "IntentionMenu",
	TerminalMenu:     "TerminalMenu",
	CommitMenu:       "CommitMenu",
	RunPanelLocation: "RunPanel",
	ChatBox:          "ChatBox",
	InputBox:         "InputBox",
	DatabaseMenu:     "DatabaseMenu",
	ConsoleMenu:      "ConsoleMenu",
	VcsLog:           "VcsLog",
}

func (a ActionLocation) String() string {
	if int(a) < len(locationNames) {
		return locationNames[a]
	}
	return fmt.Sprintf("ActionLocation(%d)", int(a))
}

// ActionLocations lists every location in declaration order.
func ActionLocations() []ActionLocation {
	out := make([]ActionLocation, len(locationNames))
	for i := range locationNames {
		out[i] = ActionLocation(i)
	}
	return out
}

// ParseActionLocation accepts both ContextMenu and CONTEXT_MENU spellings.
func ParseActionLocation(s string) (ActionLocation, error) {
	for i, name := range locationNames {
		if normalize(name) == normalize(s) {
			return ActionLocation(i), nil
		}
	}
	return RunPanelLocation, fmt.Errorf("unknown action location %q", s)
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}
