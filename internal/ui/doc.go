// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a thin view over [store.Store]:
//  1. [ListView] : Browse the filtered catalog, search with "/" and toggle favorites
//  2. [DetailView] : Show one movie fetched by id
//  3. [FormView] : Add or edit a movie with inline validation
//  4. [ConfirmDeleteView] : Confirm a delete
//  5. [UsernameView] : Ask for a username before any mutation when none is set
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Store changes are signalled through a subscription channel, so results of the search debouncer
// and of engine operations reach the view without polling. While the store holds an error a
// full-screen error view is shown; any key clears it.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
