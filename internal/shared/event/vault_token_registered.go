package event

// VaultTokenRegisteredDestination is the topic for token registration events.
const VaultTokenRegisteredDestination string = "vault_token_registered"

// VaultTokenRegisteredMessage announces a token added to the vault and
// registered with the scheduler.
type VaultTokenRegisteredMessage struct {
	TokenID int64  `json:"token_id"`
	Label   string `json:"label"`
	Issuer  string `json:"issuer"`
	Source  string `json:"source"`
}
