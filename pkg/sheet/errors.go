package sheet

import "fmt"

// SheetError reports a detection failure confined to one sheet, with enough
// context for someone to open the file and fix the layout by hand.
type SheetError struct {
	Path  string
	Sheet string
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Path, e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error { return e.Err }
