package display

import (
	"encoding/json"
	"os"

	"github.com/git1file/git1file/errors"
)

// MarshalJSON marshals JSON with pretty formatting for a terminal and
// compact formatting when stdout is piped
func MarshalJSON(v interface{}) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if isTerminal(os.Stdout) {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal JSON")
	}
	return data, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
