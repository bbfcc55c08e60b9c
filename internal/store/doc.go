// Package store implements the configuration store for one scope's
// configuration file.
//
// The store's consistency model is deliberately simple: every mutation
// is a full load-modify-save, the save is an atomic replace inside an
// exclusive advisory lock, and concurrent writers settle on exactly
// one complete payload (last writer wins). Reads take a shared lock so
// they never observe a write in progress.
//
// Top-level JSON fields the store does not recognize are preserved
// verbatim across every load/save cycle; the configuration files it
// manages are shared with other tools that own their own keys.
package store
