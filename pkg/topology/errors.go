package topology

import "errors"

// ErrNodeNotFound is returned when an ASN has no node in the graph
var ErrNodeNotFound = errors.New("node not found")
