package dto

// ConnectRequest opens a repository connection. DSN falls back to the
// configured database when omitted.
type ConnectRequest struct {
	DSN string `json:"dsn,omitempty"`
}

// ConnectionStatusResponse reports the current connection state.
type ConnectionStatusResponse struct {
	Connected bool   `json:"connected"`
	MainDir   string `json:"main_dir,omitempty"`
	ThumbDir  string `json:"thumbnail_dir,omitempty"`
}
