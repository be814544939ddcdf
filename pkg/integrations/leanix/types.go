package leanix

import "encoding/json"

// Bookmark types and groups used by the visualizer.
const (
	TypeVisualizer = "VISUALIZER"
	GroupFreedraw  = "freedraw"
)

// DefaultBookmarkName is used when CreateOptions.Name is empty.
const DefaultBookmarkName = "diagram"

// Bookmark is a saved workspace view.
type Bookmark struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	GroupKey    string          `json:"groupKey,omitempty"`
	State       json.RawMessage `json:"state,omitempty"`
}

// GraphXML returns the graph document stored in a visualizer bookmark, or
// "" when the state carries none.
func (b Bookmark) GraphXML() string {
	var s State
	if len(b.State) == 0 || json.Unmarshal(b.State, &s) != nil {
		return ""
	}
	return s.GraphXML
}

// State is the visualizer payload of a bookmark.
type State struct {
	GraphXML string `json:"graphXml"`
}

// CreateOptions name a new bookmark.
type CreateOptions struct {
	Name        string // default DefaultBookmarkName
	Description string
	GroupKey    string // default GroupFreedraw
}

type createRequest struct {
	GroupKey    string `json:"groupKey"`
	Description string `json:"description"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	State       State  `json:"state"`
}

// envelope is the {"data": ...} wrapper of every pathfinder response.
type envelope[T any] struct {
	Data T `json:"data"`
}
