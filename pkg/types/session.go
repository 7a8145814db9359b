package types

import "encoding/json"

// Session is the payload returned by a successful sign-in
type Session struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`

	// Raw is the response body exactly as the service sent it
	Raw json.RawMessage `json:"-"`
}

// ParseSession decodes a sign-in payload, keeping the raw bytes
func ParseSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	s.Raw = append(json.RawMessage(nil), data...)
	return &s, nil
}

// Registration is the user record returned by sign-up
type Registration struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
