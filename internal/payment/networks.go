package payment

import "strings"

// NetworkConfig holds configuration for a payment network
type NetworkConfig struct {
	ChainID       int64
	Name          string
	DisplayName   string
	TokenContract string
	TokenSymbol   string
	TokenDecimals int
	IsTestnet     bool
}

// Networks maps network names to their configurations
var Networks = map[string]NetworkConfig{
	"pharos-devnet": {
		ChainID:       5042002,
		Name:          "pharos-devnet",
		DisplayName:   "Pharos Devnet",
		TokenContract: "0x72df0bcd7276f2dFbAc900D1CE63c272C4BCcCED",
		TokenSymbol:   "USDC",
		TokenDecimals: 6,
		IsTestnet:     true,
	},
	"base": {
		ChainID:       8453,
		Name:          "base",
		DisplayName:   "Base",
		TokenContract: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		TokenSymbol:   "USDC",
		TokenDecimals: 6,
		IsTestnet:     false,
	},
	"base-sepolia": {
		ChainID:       84532,
		Name:          "base-sepolia",
		DisplayName:   "Base Sepolia",
		TokenContract: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		TokenSymbol:   "USDC",
		TokenDecimals: 6,
		IsTestnet:     true,
	},
}

// ByName returns the network configuration for a network name
func ByName(name string) (NetworkConfig, bool) {
	network, ok := Networks[strings.ToLower(strings.TrimSpace(name))]
	return network, ok
}

// ByChainID returns the network configuration for a chain ID
func ByChainID(chainID int64) (NetworkConfig, bool) {
	for _, network := range Networks {
		if network.ChainID == chainID {
			return network, true
		}
	}
	return NetworkConfig{}, false
}

// DefaultNetwork returns the network used when none is configured
func DefaultNetwork() NetworkConfig {
	return Networks["pharos-devnet"]
}
