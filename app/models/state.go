package models

// Action types understood by the state store
const (
	ActionSelectPost = "post/select"
	ActionPush       = "router/push"
)

// State is the per-visitor UI state
type State struct {
	Post   PostState   `json:"post"`
	Router RouterState `json:"router"`
}

// PostState holds the post selection
type PostState struct {
	Selected string `json:"selected"`
}

// RouterState holds the current client location
type RouterState struct {
	Location string `json:"location"`
}

// Action is a state change request with a string payload
type Action struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

// GetIn reads a nested string value by path, e.g. GetIn("post", "selected").
// Missing paths and non-string leaves yield "".
func (s State) GetIn(path ...string) string {
	if len(path) != 2 {
		return ""
	}
	switch path[0] {
	case "post":
		if path[1] == "selected" {
			return s.Post.Selected
		}
	case "router":
		if path[1] == "location" {
			return s.Router.Location
		}
	}
	return ""
}
