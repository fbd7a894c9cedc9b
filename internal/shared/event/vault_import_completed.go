package event

// VaultImportCompletedDestination is the topic for finished migration imports.
const VaultImportCompletedDestination string = "vault_import_completed"

// VaultImportCompletedMessage summarizes one migration payload import.
type VaultImportCompletedMessage struct {
	Imported int     `json:"imported"`
	Skipped  int     `json:"skipped"`
	TokenIDs []int64 `json:"token_ids"`
}
