package domain

import "errors"

var (
	// ErrInvalidCriteria signals malformed search criteria, rejected before any
	// outbound call.
	ErrInvalidCriteria = errors.New("invalid search criteria")
	// ErrNoQueryText signals a recommendation request with neither query text
	// nor a stored preference to fall back to.
	ErrNoQueryText = errors.New("no query text or stored preference")
	// ErrVectorDimMismatch signals an embedding whose dimensionality does not
	// match the indexed vector field.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrRetrieval signals a search/KNN index failure on a primary path.
	ErrRetrieval = errors.New("index retrieval failed")
)
