package evaluation

import "errors"

var (
	// ErrNoQuestionSelected rejects annotation placement before a question
	// has been selected. No state mutation occurs.
	ErrNoQuestionSelected = errors.New("no question selected")

	// ErrUnknownQuestion rejects operations referencing a question number
	// that is not on the active exam.
	ErrUnknownQuestion = errors.New("question not found on exam")

	// ErrSessionNotLoaded rejects mutations before Load has succeeded.
	ErrSessionNotLoaded = errors.New("evaluation session not loaded")

	// ErrSessionClosed rejects operations after Close.
	ErrSessionClosed = errors.New("evaluation session closed")
)

// detailer is satisfied by transport errors that carry a server-supplied
// human-readable message; explicit save failures prefer it over a generic
// message.
type detailer interface {
	ErrorDetail() string
}
