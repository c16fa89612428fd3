package domain

type CtxKey string

const (
	// KeyRequestID is also the gin context key the response envelope reads.
	KeyRequestID CtxKey = "RequestID"
)
