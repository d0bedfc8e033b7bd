package model

import (
	"github.com/cloudwego/eino/schema"
)

// Route names the state the orchestrator settled on after the model step.
type Route string

const (
	RouteNone         Route = ""
	RouteDone         Route = "done"
	RoutePlacesLookup Route = "places_lookup"
)

// ConversationState stores per-turn state for the orchestration graph.
// Concurrency model:
//   - Registered as graph local state via compose.WithGenLocalState, so a fresh
//     value exists per invocation.
//   - Reads and writes happen only inside state handlers or compose.ProcessState,
//     which eino serializes.
//   - Cross-turn identity lives in the ConversationRepository keyed by ThreadID.
type ConversationState struct {
	ThreadID    string
	Input       string
	ChatHistory []*schema.Message // user/assistant pairs, insertion order significant
	Context     string            // retrieved support text; place block appended on lookup success
	Answer      string            // empty only before the model step ran

	// Sufficient is the optional structured signal from the answer chain. A
	// false value forces a lookup; it never suppresses the text classifier.
	Sufficient *bool
	Route      Route
	PlaceName  string
	PlaceInfo  string
}

// TurnInput is the public input of one conversation turn.
type TurnInput struct {
	ThreadID string `json:"thread_id"`
	Input    string `json:"input"`
}

// ChainResult is what the retrieval+answer collaborator returns.
type ChainResult struct {
	Answer     string
	Context    string
	Documents  []*schema.Document
	Sufficient *bool
}
