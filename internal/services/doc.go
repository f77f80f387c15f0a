// Package services defines the [CatalogService] interface for the remote movie catalog and implements it over REST.
//
// # Catalog Interface
//
// Every server interaction the client performs is one method on [CatalogService].
// The sync thunks in the tasks package depend on the interface so they can be driven by a test double.
//
// # REST Implementation
//
// [CatalogClient] speaks JSON to the catalog service rooted at api.base_url:
//   - GET  /getAllMovies, /getMovieById/{id}, /searchMovies?searchTerm=
//   - POST /addMovie, PUT /editMovie/{id}, DELETE /deleteMovie/{id}
//   - GET  /getAllFavourites?username=, /searchFavourites?username=&searchTerm=, /isMovieFavorited/{id}?username=
//   - POST /addToFavourites/{id}, DELETE /removeFromFavourites/{id}
//
// Mutations carry the acting username in the JSON body, including DELETE requests.
// Each request is tagged with an X-Request-ID header and throttled by an optional [rate.Limiter].
//
// # Error Handling
//
// Non-2xx responses become [*APIError]. Its message comes from the body's "message" or "error" field
// when present, otherwise from the HTTP status text. [APIError] unwraps to [shared.ErrAPIRequest].
// Transport failures are wrapped with "request failed", body read failures with "failed to read response".
package services
