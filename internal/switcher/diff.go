package switcher

import (
	"encoding/json"

	"github.com/goopey7/brig/internal/config"
)

// toMap round-trips a Config through JSON into the map shape
// gojsondiff.Compare expects.
func toMap(c config.Config) map[string]interface{} {
	b, err := json.Marshal(c)
	if err != nil {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
