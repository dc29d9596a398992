package models

// Actor is the caller identity forwarded by the gateway. The service never authenticates it.
type Actor struct {
	ID   uint
	Name string
	Role string
}
