package handlers

import "encoding/json"

// bindJSON unmarshals a body that already passed schema validation.
func bindJSON(body []byte, target interface{}) error {
	return json.Unmarshal(body, target)
}
