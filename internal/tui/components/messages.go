package components

import "github.com/Veraticus/rotto/internal/model"

// NavigateMsg asks the application to move to another screen.
type NavigateMsg struct {
	Route model.Route
}

// FilterChosenMsg is sent when the filter modal picks a filter.
type FilterChosenMsg struct {
	Filter model.Filter
}

// SearchSubmittedMsg carries the query typed into the search modal.
// An empty query clears the search.
type SearchSubmittedMsg struct {
	Query string
}

// ModalClosedMsg is sent when a modal is dismissed without a choice.
type ModalClosedMsg struct{}
