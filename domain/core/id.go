package core

import (
	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Short returns the trailing 8 characters, used to keep log lines readable
func (id ID) Short() string {
	s := string(id)
	if len(s) <= 8 {
		return s
	}
	return s[len(s)-8:]
}

// Domain-specific ID types
type (
	SessionID ID
	JobID     ID
)

// String conversions for domain IDs
func (id SessionID) String() string { return ID(id).String() }
func (id JobID) String() string     { return ID(id).String() }

// NewSessionID identifies one transport connection
func NewSessionID() SessionID { return SessionID(NewID()) }

// NewJobID identifies one unit of work on the document loop
func NewJobID() JobID { return JobID(NewID()) }
