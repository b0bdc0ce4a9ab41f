// Package signer produces detached OpenPGP signatures for written reports.
package signer

// Signer creates detached signatures
type Signer interface {
	// SignDetached creates an armored detached signature of data
	SignDetached(data []byte) ([]byte, error)

	// GetPublicKey returns the armored public key
	GetPublicKey() ([]byte, error)
}
