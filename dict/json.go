package dict

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/gosteno/chord"
)

// InvalidJSONError reports a dictionary JSON document that could not be
// loaded, per spec §6/§7's "InvalidJson" error.
type InvalidJSONError struct {
	Path string // the chord-path key that failed, if applicable
	Err  error
}

func (err InvalidJSONError) Error() string {
	if err.Path != "" {
		return fmt.Sprintf("invalid dictionary JSON at %q: %v", err.Path, err.Err)
	}
	return fmt.Sprintf("invalid dictionary JSON: %v", err.Err)
}

func (err InvalidJSONError) Unwrap() error { return err.Err }

// LoadJSON reads a JSON object mapping chord-path strings ("STKPWHR/-T") to
// value strings ("hello", "{^ing}", "=undo") and inserts each into d.
//
// This is deliberately the thinnest possible adapter: spec §1/§6 name JSON
// dictionary loading as an out-of-scope external collaborator, so beyond
// satisfying the documented wire shape there is no feature surface here to
// build out (see DESIGN.md).
func LoadJSON(d *Dictionary, r io.Reader) error {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return InvalidJSONError{Err: err}
	}

	for pathStr, rawValue := range raw {
		var valueStr string
		if err := json.Unmarshal(rawValue, &valueStr); err != nil {
			return InvalidJSONError{Path: pathStr, Err: err}
		}

		path, err := parsePath(pathStr)
		if err != nil {
			return InvalidJSONError{Path: pathStr, Err: err}
		}

		value, err := Parse(valueStr)
		if err != nil {
			return InvalidJSONError{Path: pathStr, Err: err}
		}

		if _, err := d.Insert(path, value); err != nil {
			return InvalidJSONError{Path: pathStr, Err: err}
		}
	}

	return nil
}

func parsePath(pathStr string) ([]chord.Chord, error) {
	parts := strings.Split(pathStr, "/")
	path := make([]chord.Chord, len(parts))
	for i, p := range parts {
		c, err := chord.Parse(p)
		if err != nil {
			return nil, err
		}
		path[i] = c
	}
	return path, nil
}
