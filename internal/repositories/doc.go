// Package repositories implements SQLite persistence for the offline snapshot.
//
// [SnapshotRepository] keeps the last successfully fetched catalog and each user's favorite ids.
// A save replaces the previous snapshot for its scope in one transaction and appends a sync_log
// row keyed by the request ID, so a cached listing can be traced back to the request that produced it.
//
// The schema lives in shared/sql and is applied by [shared.RunMigrations].
package repositories
