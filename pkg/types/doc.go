// Package types defines the storage layout data model, the Store interface,
// and standard error types for slotview.
//
// A StorageLayout pairs an ordered sequence of StorageItem values with a
// TypeDictionary. Type relationships are string-keyed cross references:
// a mapping descriptor names its key and value types by id, and those ids are
// looked up in the same dictionary.
package types
