package land

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Placeholder substituted for descriptive fields when the metadata blob
// cannot be fetched from any mirror.
const Unavailable = "unavailable"

// Metadata is the descriptive off-chain blob recorded against a land asset.
// Blobs are immutable once written: a transfer or re-listing uploads a new
// blob and points the asset at the new hash.
type Metadata struct {
	TitleNumber string `json:"titleNumber"`
	LandType    string `json:"landType"`
	Username    string `json:"username"`
	PriceFiat   string `json:"priceFiat"`
	Area        string `json:"area"`
	DeedCID     string `json:"deedCid,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Profile is the off-chain account blob attached at registration.
type Profile struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phoneNumber"`
	IdentityNumber string `json:"identityNumber,omitempty"`
}

func placeholderMetadata() Metadata {
	return Metadata{
		TitleNumber: Unavailable,
		LandType:    Unavailable,
		Username:    Unavailable,
		PriceFiat:   Unavailable,
		Area:        Unavailable,
	}
}

// Fingerprint computes the sha3-512 digest of a supporting document so the
// metadata blob can commit to the exact file content.
func Fingerprint(content []byte) string {
	digest := sha3.Sum512(content)
	return hex.EncodeToString(digest[:])
}
