package model

// Credential is the application identity used to mint one platform
// token per fetch. It is never persisted.
type Credential struct {
	AppID  string
	Secret string
}
