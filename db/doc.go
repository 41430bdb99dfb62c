/*
Package db is the SQLite access layer: it reads loaded feed tables into a
gtfs.Feed, owns the error and pattern table schemas, and persists the
outputs of a validation run.

One feed lives under one Namespace, which prefixes every physical table
name, so several feeds can share a database file. The pool is pinned to a
single connection because SQLite allows only one writer; a validation run
owns the connection for its duration and all writes are serialized by the
caller.
*/
package db
