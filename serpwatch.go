// Package serpwatch tracks search-engine ranking positions for a list of
// keywords, detects rank regressions of a tracked domain, and compares the
// tracked page against the competitor that outranks it.
//
// This package contains domain types, the pure ranking/comparison logic and
// the interfaces of its collaborators, following Ben Johnson's Standard
// Package Layout. Implementations live in subdirectories named after their
// primary dependency (e.g., rod/, goquery/, gemini/, sheets/).
package serpwatch
