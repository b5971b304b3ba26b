package chain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssetID identifies a native coin (empty TokenID) or a token on a chain.
// The string form is "<chain>" or "<chain>_<token>".
type AssetID struct {
	Chain   Chain
	TokenID string
}

func NewNativeAsset(c Chain) AssetID {
	return AssetID{Chain: c}
}

func NewTokenAsset(c Chain, tokenID string) AssetID {
	return AssetID{Chain: c, TokenID: tokenID}
}

func ParseAssetID(s string) (AssetID, error) {
	chainPart, token, _ := strings.Cut(s, "_")
	c, err := FromString(chainPart)
	if err != nil {
		return AssetID{}, fmt.Errorf("invalid asset id %q: %w", s, err)
	}
	return AssetID{Chain: c, TokenID: token}, nil
}

func (a AssetID) IsNative() bool {
	return a.TokenID == ""
}

func (a AssetID) String() string {
	if a.IsNative() {
		return a.Chain.String()
	}
	return a.Chain.String() + "_" + a.TokenID
}

// Equal compares token ids case-insensitively, EVM addresses are hex.
func (a AssetID) Equal(b AssetID) bool {
	return a.Chain == b.Chain && strings.EqualFold(a.TokenID, b.TokenID)
}

func (a AssetID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AssetID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	// unset assets encode as "", null decodes the same way.
	if s == "" {
		*a = AssetID{}
		return nil
	}
	parsed, err := ParseAssetID(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
