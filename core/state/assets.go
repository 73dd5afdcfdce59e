package state

import (
	"fmt"
	"sort"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AssetMetadata describes a payment asset registered with the settlement
// node. Assets are host-level: the node operator (or genesis) registers the
// symbols marketplaces may price products in.
type AssetMetadata struct {
	Symbol        string
	Name          string
	Decimals      uint8
	MintAuthority []byte
	MintPaused    bool
}

// NormalizeAsset canonicalises an asset symbol for lookups.
func NormalizeAsset(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func assetMetadataKey(symbol string) []byte {
	return prefixedKey(assetPrefix, []byte(symbol))
}

func assetListKey() []byte {
	return kvKey(assetListRaw)
}

func (m *Manager) loadAssetList() ([]string, error) {
	var list []string
	if _, err := m.getRecord(assetListKey(), &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (m *Manager) writeAssetList(list []string) error {
	return m.putRecord(assetListKey(), list)
}

// RegisterAsset stores the metadata for a payment asset and records it in the
// asset index. Registering an existing symbol fails.
func (m *Manager) RegisterAsset(symbol, name string, decimals uint8, mintAuthority []byte) error {
	normalized := NormalizeAsset(symbol)
	if normalized == "" {
		return fmt.Errorf("asset symbol must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("asset %s: name must not be empty", normalized)
	}
	if existing, err := m.AssetMetadata(normalized); err != nil {
		return err
	} else if existing != nil {
		return fmt.Errorf("asset %s already registered", normalized)
	}
	list, err := m.loadAssetList()
	if err != nil {
		return err
	}
	list = append(list, normalized)
	sort.Strings(list)
	if err := m.writeAssetList(list); err != nil {
		return err
	}
	meta := &AssetMetadata{
		Symbol:        normalized,
		Name:          strings.TrimSpace(name),
		Decimals:      decimals,
		MintAuthority: append([]byte(nil), mintAuthority...),
	}
	return m.putRecord(assetMetadataKey(normalized), meta)
}

// AssetMetadata returns the stored metadata for the symbol, or nil when the
// asset is unknown.
func (m *Manager) AssetMetadata(symbol string) (*AssetMetadata, error) {
	normalized := NormalizeAsset(symbol)
	meta := new(AssetMetadata)
	ok, err := m.getRecord(assetMetadataKey(normalized), meta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return meta, nil
}

// AssetExists reports whether the symbol has been registered.
func (m *Manager) AssetExists(symbol string) bool {
	meta, err := m.AssetMetadata(symbol)
	return err == nil && meta != nil
}

// Assets returns the sorted list of registered asset symbols.
func (m *Manager) Assets() ([]string, error) {
	return m.loadAssetList()
}

// ModuleVaultAddress derives the deterministic balance-holder address for a
// named module vault (escrowed payments, reward bounties). The derivation is
// pure so no allocator state is needed.
func ModuleVaultAddress(module string) [20]byte {
	raw := make([]byte, 0, len(moduleVaultPrefix)+len(module))
	raw = append(raw, moduleVaultPrefix...)
	raw = append(raw, []byte(module)...)
	hash := ethcrypto.Keccak256(raw)
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}
