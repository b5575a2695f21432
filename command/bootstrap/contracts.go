package bootstrap

// Contract artifact names
const (
	RootTunnelContract   = "FxStreamRootTunnel"
	ChildTunnelContract  = "FxERC20ChildTunnel"
	BridgeTunnelContract = "FxERC20BridgeTunnel"
	OracleContract       = "LockedGoldOracle"
	RootTokenContract    = "StreamGold"
	BridgeTokenContract  = "StreamGoldBridge"
	ERC721Contract       = "SimpleMintBurnERC721"
	GatewayContract      = "ERC721Gateway_MintBurn"
	AnyCallContract      = "anycall"
)

// Token constants of the bridged gold token
const (
	TokenName     = "STREAM GOLD TOKEN"
	TokenSymbol   = "SGLD"
	TokenDecimals = uint8(8)
)

// Account indexes, in the order the signers are configured
const (
	DeployerAccount  = 0
	BackedAccount    = 1
	UnbackedAccount  = 2
	RedeemAccount    = 3
	DepositorAccount = 4

	OwnerAccount = DeployerAccount
	FeeAccount   = BackedAccount
)
