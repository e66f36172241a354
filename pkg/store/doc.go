// Package store defines the public contract of the Larder storage library:
// the Database registry interface, the KVTable and KKVTable data interfaces,
// the Value and TableInfo types, capability flags, configuration, and the
// standard errors every implementation returns.
//
// The package contains no behavior beyond validation helpers. Callers open a
// concrete Database through pkg/larder and program against the interfaces
// defined here.
package store
