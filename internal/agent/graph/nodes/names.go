package nodes

// Graph node names. NodeFinalize is the DONE state.
const (
	NodeModelAnswer  = "model_answer"
	NodePlacesLookup = "places_lookup"
	NodeFinalize     = "finalize"
)
