package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ContactNumber is a user's phone number held as an integer.
// It decodes from a JSON number or a numeric JSON string.
type ContactNumber int64

func (n *ContactNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	v, err := strconv.ParseInt(string(bytes.Trim(data, `"`)), 10, 64)
	if err != nil {
		return fmt.Errorf("contactNumber must be an integer: %w", err)
	}
	*n = ContactNumber(v)
	return nil
}

func (n ContactNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(n))
}

type User struct {
	ID            string        `json:"id"`
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	ContactNumber ContactNumber `json:"contactNumber"`
	CreatedAt     time.Time     `json:"createdTimestamp"`
}
