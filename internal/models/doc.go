// Package models defines the catalog entities shared by the client, the state container, and the local cache.
//
// The package contains three groups of types:
//
// 1. Wire types exchanged with the remote catalog service
//   - [Movie] : a catalog entry with a server-assigned id
//   - [MovieInput] : fields for creating a movie, plus the acting username
//   - [MovieUpdate] : a partial update, plus the acting username
//
// 2. Client-side form handling
//   - [MovieForm] : raw user input for add/edit
//   - [FormErrors] : field-keyed validation messages, collected rather than fail-fast
//
// 3. Persistence contract
//   - [SnapshotStore] : the local cache of the last fetched catalog and favorites
package models
