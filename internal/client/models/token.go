package models

// TokenPair is the credential pair issued on login and register.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
