package evaluation

import (
	"context"
	"errors"
)

// Key is a normalized keyboard event. Name follows the browser KeyboardEvent
// key values ("z", "s", "1"..."9").
type Key struct {
	Name  string
	Ctrl  bool
	Meta  bool
	Alt   bool
	Shift bool
}

func (k Key) ctrlLike() bool { return k.Ctrl || k.Meta }

// HandleKey dispatches global evaluation shortcuts: ctrl/cmd+z undo,
// ctrl/cmd+y redo, ctrl/cmd+s save, bare digits 1-9 select that question.
// Shortcuts are suppressed entirely while a text input has focus so typing
// marks or comments never triggers them.
func (s *Session) HandleKey(ctx context.Context, k Key, textInputFocused bool) error {
	if textInputFocused {
		return nil
	}

	if k.ctrlLike() {
		switch k.Name {
		case "z":
			if k.Shift {
				return nil
			}
			s.Undo()
		case "y":
			s.Redo()
		case "s":
			return s.Save(ctx, true)
		}
		return nil
	}

	if k.Alt || len(k.Name) != 1 {
		return nil
	}
	if k.Name[0] >= '1' && k.Name[0] <= '9' {
		n := int(k.Name[0] - '0')
		if err := s.SelectQuestion(n); err != nil && !errors.Is(err, ErrUnknownQuestion) {
			return err
		}
	}
	return nil
}
