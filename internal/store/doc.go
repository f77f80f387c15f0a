// Package store holds the client-side state of the movie catalog.
//
// # State and Actions
//
// [State] is a plain value: the loaded movies, the selected movie, the favorite ids and objects,
// the search and favorites-only filters, the current username, and the shared loading and error flags.
// It changes only through [Reduce], a pure function of the previous state and an [Action].
// Reduce copies any slice it modifies, so states handed out earlier are never altered.
//
// Network operations are modelled as three actions per [Op], one per [Stage]: [Pending],
// a fulfilled action built by the result constructors ([MoviesFetched], [FavoriteAdded] and so on),
// and [Rejected]. Pending raises the loading flag and clears the error. [StageFulfilled] lowers it and
// applies the result. Rejected lowers it and records the failure message, or the operation's fallback
// when the failure has none.
//
// # Container
//
// [Store] owns one State behind a [sync.RWMutex]. It is created by the application root and passed
// to whatever needs it; there is no package-level instance. Subscribers are called after every dispatch
// with a copy of the new state.
//
// # Collaborators
//
//   - [SelectFilteredMovies] derives the visible list from the search query and favorites-only filter.
//   - [Gate] runs mutations only once a username is known, asking a [Confirmer] when it is not.
//   - [Debouncer] coalesces search input before it reaches the network.
package store
