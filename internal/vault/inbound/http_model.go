package inbound

type SessionCreateRequest struct {
	Passphrase string `json:"passphrase"`
}

type SessionCreateResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (SessionCreateResponse) Message() string {
	return "Vault unlocked."
}

type TokenCreateRequest struct {
	Label     string `json:"label"`
	Issuer    string `json:"issuer"`
	Secret    string `json:"secret"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
	Algorithm string `json:"algorithm"`
}

type TokenCreateResponse struct {
	ID     int64  `json:"id,string"`
	Secret string `json:"secret,omitempty"`
	URI    string `json:"uri,omitempty"`
}

func (TokenCreateResponse) Message() string {
	return "Token added to the vault."
}

type TokenItem struct {
	ID        int64  `json:"id,string"`
	Label     string `json:"label"`
	Issuer    string `json:"issuer"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
	Algorithm string `json:"algorithm"`
	Source    string `json:"source"`
	Code      string `json:"code"`
	Remaining int    `json:"remaining"`
}

type TokenListResponse struct {
	Tokens []TokenItem `json:"tokens"`
	Ticks  uint64      `json:"ticks"`
}

type TokenPeekResponse struct {
	Code      string `json:"code"`
	Remaining int    `json:"remaining"`
	Period    int    `json:"period"`
}

type MigrationImportRequest struct {
	URL string `json:"url"`
}

type MigrationImportResponse struct {
	Imported int     `json:"imported"`
	TokenIDs []int64 `json:"token_ids"`
}

func (MigrationImportResponse) Message() string {
	return "Migration payload imported."
}

type VisibilityResponse struct {
	Visible bool `json:"visible"`
}

type VaultBackupResponse struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func (VaultBackupResponse) Message() string {
	return "Vault backup uploaded."
}
