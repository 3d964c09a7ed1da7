package types

// Metadata represents a free-form key-value attribute map stored on a record
type Metadata map[string]string
