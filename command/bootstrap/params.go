package bootstrap

import (
	"io"

	"github.com/spf13/cobra"
)

const (
	JSONRPCFlag         = "json-rpc"
	NetworkFlag         = "network"
	ArtifactsFlag       = "artifacts"
	ArtifactsFormatFlag = "artifacts-format"
	AddressBookFlag     = "address-book"
	JournalFlag         = "journal"
	PrivateKeysFlag     = "private-keys"
	SecretsConfigFlag   = "secrets-config"
	DataDirFlag         = "data-dir"
	AccountsFlag        = "accounts"
	TestFlag            = "test"
	VerifyFlag          = "verify"
	MetricsPushFlag     = "metrics-push"
	ForceFlag           = "force"
)

// Params are the flags every chain command shares. Empty values fall back to the config file.
type Params struct {
	ArtifactsDir    string
	ArtifactsFormat string
	AddressBook     string
	JournalPath     string
	PrivateKeys     []string
	SecretsConfig   string
	DataDir         string
	SecretNames     []string
	TestMode        bool
	Verify          bool
	Force           bool
	MetricsPushURL  string

	// WithoutAccounts skips account resolution for read-only commands
	WithoutAccounts bool

	// LookupEnv defaults to os.LookupEnv
	LookupEnv func(key string) (string, bool)
	// LogOutput defaults to stderr
	LogOutput io.Writer
}

// ChainParams selects the endpoint of one chain
type ChainParams struct {
	JSONRPC string
	Network string
}

// RegisterFlags registers the shared flags on cmd
func RegisterFlags(cmd *cobra.Command, p *Params) {
	cmd.Flags().StringVar(
		&p.ArtifactsDir,
		ArtifactsFlag,
		"",
		"the contract artifacts directory, overrides the config file",
	)

	cmd.Flags().StringVar(
		&p.ArtifactsFormat,
		ArtifactsFormatFlag,
		"",
		"the artifacts layout (hardhat or split), overrides the config file",
	)

	cmd.Flags().StringVar(
		&p.AddressBook,
		AddressBookFlag,
		"",
		"the JSON address book of the FxPortal contracts, the embedded one is used if omitted",
	)

	cmd.Flags().StringVar(
		&p.JournalPath,
		JournalFlag,
		"",
		"the deployment journal database, overrides the config file",
	)

	cmd.Flags().StringSliceVar(
		&p.PrivateKeys,
		PrivateKeysFlag,
		nil,
		"hex encoded private keys of the signing accounts, in account index order",
	)

	cmd.Flags().StringVar(
		&p.SecretsConfig,
		SecretsConfigFlag,
		"",
		"the path to the SecretsManager config file holding the signing accounts",
	)

	cmd.Flags().StringVar(
		&p.DataDir,
		DataDirFlag,
		"",
		"the directory of the local FS secrets manager holding the signing accounts",
	)

	cmd.Flags().StringSliceVar(
		&p.SecretNames,
		AccountsFlag,
		nil,
		"names of the account secrets in the secrets manager, in account index order",
	)

	cmd.Flags().BoolVar(
		&p.TestMode,
		TestFlag,
		false,
		"use the well-known test accounts and fund them from the node's unlocked account",
	)

	cmd.Flags().StringVar(
		&p.MetricsPushURL,
		MetricsPushFlag,
		"",
		"the Prometheus pushgateway URL the transaction metrics are pushed to",
	)

	cmd.MarkFlagsMutuallyExclusive(PrivateKeysFlag, TestFlag)
	cmd.MarkFlagsMutuallyExclusive(SecretsConfigFlag, DataDirFlag)
}

// RegisterDeployFlags registers the flags of commands that create contracts
func RegisterDeployFlags(cmd *cobra.Command, p *Params) {
	cmd.Flags().BoolVar(
		&p.Verify,
		VerifyFlag,
		false,
		"verify the deployed contracts on the block explorer of the network",
	)

	cmd.Flags().BoolVar(
		&p.Force,
		ForceFlag,
		false,
		"deploy even if the journal holds a live deployment of the contract",
	)
}

// RegisterChainFlags registers the endpoint flags of one chain. The suffix tells chains apart
// when a command works on more than one.
func RegisterChainFlags(cmd *cobra.Command, cp *ChainParams, suffix, chain string) {
	cmd.Flags().StringVar(
		&cp.JSONRPC,
		JSONRPCFlag+suffix,
		"",
		"the JSON RPC endpoint of the "+chain+", docker://<name> resolves a local container",
	)

	cmd.Flags().StringVar(
		&cp.Network,
		NetworkFlag+suffix,
		"",
		"the config file network used as the "+chain,
	)
}
