package model

// NodeKind tags the concrete entity behind a Node.
type NodeKind int

const (
	KindAccount NodeKind = iota + 1
	KindApplication
)

func (k NodeKind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// Node is any entity addressable through a global identifier.
// Implemented by *Account and *Application only.
type Node interface {
	NodeKind() NodeKind
	NodeKey() string
}
