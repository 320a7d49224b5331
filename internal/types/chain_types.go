// Package types contains shared type definitions used across multiple packages
package types

// SupportedChain represents a blockchain network the optimizer polls
type SupportedChain string

// Supported blockchain networks
const (
	ChainBase     SupportedChain = "base"
	ChainOptimism SupportedChain = "optimism"
	ChainArbitrum SupportedChain = "arbitrum"
)

// ChainConfig holds the static description of a blockchain network
type ChainConfig struct {
	ID          SupportedChain `json:"id"`
	DisplayName string         `json:"display_name"`
	RPCEnvVar   string         `json:"rpc_env_var"`
}

// registry is ordered; ranking ties resolve to the earlier entry.
var registry = []ChainConfig{
	{ID: ChainBase, DisplayName: "Base", RPCEnvVar: "BASE_RPC_URL"},
	{ID: ChainOptimism, DisplayName: "Optimism", RPCEnvVar: "OPTIMISM_RPC_URL"},
	{ID: ChainArbitrum, DisplayName: "Arbitrum", RPCEnvVar: "ARBITRUM_RPC_URL"},
}

// Registry returns a copy of the configured chains in registry order
func Registry() []ChainConfig {
	out := make([]ChainConfig, len(registry))
	copy(out, registry)
	return out
}
