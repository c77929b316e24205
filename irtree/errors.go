package irtree

import "errors"

// ErrMissingDocument replaces the source's System.exit(-1) on a missing
// leaf document during IR-tree construction: builders surface this as
// a structured, recoverable error instead.
var ErrMissingDocument = errors.New("irtree: missing document")

// ErrMissingCluster is ErrMissingDocument's cluster-enhanced-build
// counterpart: a leaf document has no entry in the supplied ClusterMap.
var ErrMissingCluster = errors.New("irtree: missing cluster assignment")
