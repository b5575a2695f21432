package tests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Minimal ABIs of the bridge and gateway contracts
const (
	FxStreamRootTunnelABI = `[
 {"type":"constructor","stateMutability":"nonpayable","inputs":[
   {"name":"_checkpointManager","type":"address"},{"name":"_fxRoot","type":"address"}]},
 {"type":"function","name":"setFxBridgeTunnel","stateMutability":"nonpayable",
  "inputs":[{"name":"_fxBridgeTunnel","type":"address"}],"outputs":[]},
 {"type":"function","name":"deposit","stateMutability":"nonpayable","inputs":[
   {"name":"rootToken","type":"address"},{"name":"childToken","type":"address"},
   {"name":"user","type":"address"},{"name":"amount","type":"uint256"},{"name":"data","type":"bytes"}],"outputs":[]}
]`

	FxERC20ChildTunnelABI = `[
 {"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"_fxChild","type":"address"}]}
]`

	FxERC20BridgeTunnelABI = `[
 {"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"_fxChild","type":"address"}]},
 {"type":"function","name":"setFxRootTunnel","stateMutability":"nonpayable",
  "inputs":[{"name":"_fxRootTunnel","type":"address"}],"outputs":[]}
]`

	LockedGoldOracleABI = `[
 {"type":"function","name":"lockAmount","stateMutability":"nonpayable",
  "inputs":[{"name":"amountGrams","type":"uint256"}],"outputs":[]}
]`

	StreamGoldABI = `[
 {"type":"constructor","stateMutability":"nonpayable","inputs":[
   {"name":"unbackedAddress","type":"address"},{"name":"backedAddress","type":"address"},
   {"name":"feeAddress","type":"address"},{"name":"redeemAddress","type":"address"},
   {"name":"oracle","type":"address"}]},
 {"type":"function","name":"addBackedTokens","stateMutability":"nonpayable",
  "inputs":[{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
 {"type":"function","name":"setFeeExempt","stateMutability":"nonpayable",
  "inputs":[{"name":"account","type":"address"}],"outputs":[]},
 {"type":"function","name":"approve","stateMutability":"nonpayable",
  "inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],
  "outputs":[{"name":"","type":"bool"}]}
]`

	StreamGoldBridgeABI = `[
 {"type":"function","name":"initialize","stateMutability":"nonpayable","inputs":[
   {"name":"_feeAddress","type":"address"},{"name":"_owner","type":"address"},
   {"name":"_childChainManager","type":"address"},{"name":"_rootToken","type":"address"},
   {"name":"name_","type":"string"},{"name":"symbol_","type":"string"},{"name":"decimals_","type":"uint8"}],
  "outputs":[]},
 {"type":"function","name":"setUnbackedAddress","stateMutability":"nonpayable",
  "inputs":[{"name":"newUnbackedAddress","type":"address"}],"outputs":[]},
 {"type":"function","name":"setRedeemAddress","stateMutability":"nonpayable",
  "inputs":[{"name":"newRedeemAddress","type":"address"}],"outputs":[]}
]`

	SimpleMintBurnERC721ABI = `[
 {"type":"constructor","stateMutability":"nonpayable","inputs":[
   {"name":"name_","type":"string"},{"name":"symbol_","type":"string"}]}
]`

	ERC721GatewayABI = `[
 {"type":"constructor","stateMutability":"nonpayable","inputs":[
   {"name":"anyCallProxy","type":"address"},{"name":"flag","type":"uint256"},{"name":"token","type":"address"}]},
 {"type":"function","name":"setPeers","stateMutability":"nonpayable","inputs":[
   {"name":"chainIDs","type":"uint256[]"},{"name":"peers","type":"address[]"}],"outputs":[]}
]`

	AnyCallABI = `[
 {"type":"function","name":"deposit","stateMutability":"payable",
  "inputs":[{"name":"_account","type":"address"}],"outputs":[]}
]`

	testBytecode = "0x6080604052"
)

// WriteHardhatArtifact writes <root>/contracts/<name>.sol/<name>.json together with its debug
// file and a build info, the layout produced by hardhat compile
func WriteHardhatArtifact(t *testing.T, root, name, contractAbi string) {
	t.Helper()

	dir := filepath.Join(root, "contracts", name+".sol")
	require.NoError(t, os.MkdirAll(dir, 0o750))

	content := `{"_format":"hh-sol-artifact-1","contractName":"` + name + `","sourceName":"contracts/` + name +
		`.sol","abi":` + contractAbi + `,"bytecode":"` + testBytecode + `","deployedBytecode":"0x6080"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(content), 0o600))

	buildInfoDir := filepath.Join(root, "build-info")
	require.NoError(t, os.MkdirAll(buildInfoDir, 0o750))

	buildInfo := `{"id":"` + name + `","solcVersion":"0.8.4","solcLongVersion":"0.8.4+commit.c7e474f2",` +
		`"input":{"language":"Solidity","sources":{}}}`
	require.NoError(t, os.WriteFile(filepath.Join(buildInfoDir, name+".json"), []byte(buildInfo), 0o600))

	dbg := `{"_format":"hh-sol-dbg-1","buildInfo":"../../build-info/` + name + `.json"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".dbg.json"), []byte(dbg), 0o600))
}

// WriteSplitArtifact writes <root>/abi/<name>.json and, when withBin is set, <root>/bin/<name>.txt
func WriteSplitArtifact(t *testing.T, root, name, contractAbi string, withBin bool) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "abi"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "abi", name+".json"), []byte(contractAbi), 0o600))

	if withBin {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(root, "bin", name+".txt"), []byte(testBytecode[2:]+"\n"), 0o600))
	}
}

// WriteBridgeArtifacts writes the hardhat artifacts of every bridge contract
func WriteBridgeArtifacts(t *testing.T, root string) {
	t.Helper()

	for name, contractAbi := range map[string]string{
		"FxStreamRootTunnel":  FxStreamRootTunnelABI,
		"FxERC20ChildTunnel":  FxERC20ChildTunnelABI,
		"FxERC20BridgeTunnel": FxERC20BridgeTunnelABI,
		"LockedGoldOracle":    LockedGoldOracleABI,
		"StreamGold":          StreamGoldABI,
		"StreamGoldBridge":    StreamGoldBridgeABI,
	} {
		WriteHardhatArtifact(t, root, name, contractAbi)
	}
}

// WriteGatewayArtifacts writes the split artifacts of the ERC721 gateway demo
func WriteGatewayArtifacts(t *testing.T, root string) {
	t.Helper()

	WriteSplitArtifact(t, root, "SimpleMintBurnERC721", SimpleMintBurnERC721ABI, true)
	WriteSplitArtifact(t, root, "ERC721Gateway_MintBurn", ERC721GatewayABI, true)
	WriteSplitArtifact(t, root, "anycall", AnyCallABI, false)
}
