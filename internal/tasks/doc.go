// Package tasks runs catalog operations and records their lifecycle in the store.
//
// # Operations
//
// [Engine] has one method per server interaction. Each method:
//
//  1. dispatches [store.Pending] for its [store.Op]
//  2. calls the [services.CatalogService]
//  3. dispatches the op's fulfilled action with the result, or [store.Rejected] with the error
//  4. returns the result and error to the caller
//
// The loading flag is shared by all operations, so overlapping calls can lower it early.
// Nothing is cancelled or sequenced: the last operation to settle determines the state.
//
// [Engine.IsMovieFavorited] is a plain query and leaves the store alone.
// [Engine.ToggleFavorite] picks add or remove from the current favorite ids.
//
// # Snapshots
//
// An optional [Snapshotter] (repositories.SnapshotRepository) receives every successful movie
// and favorites fetch, so the CLI can list offline and the TUI can start from the last sync.
// Cache failures are logged and never fail the operation.
//
// # Export
//
// [Engine.Export] fetches and filters the catalog, then writes each requested format with a
// small worker pool and finishes with export_manifest.json. Progress is reported through
// non-blocking [ProgressUpdate] sends.
package tasks
