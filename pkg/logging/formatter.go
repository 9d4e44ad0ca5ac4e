package logging

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// SourceFormatter adds a short file:line field and delegates the rest to Underlying.
type SourceFormatter struct {
	// Underlying renders the entry once the source field is set.
	Underlying logrus.Formatter
	// AddSpace appends a blank line after each text entry.
	AddSpace bool
}

// Format records the caller as x_file_source, e.g. "room.go:42", then
// hands the entry to Underlying.
func (f *SourceFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		entry.Data["x_file_source"] = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	formatted, err := f.Underlying.Format(entry)
	if err != nil {
		return nil, err
	}
	if f.AddSpace {
		return append(formatted, '\n'), nil
	}
	return formatted, nil
}
