package network

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/umbracle/ethgo"

	"github.com/streamgold/sgld-deployer/helper/hex"
)

// Class is the address book section a chain belongs to
type Class string

const (
	Mainnet Class = "mainnet"
	Testnet Class = "testnet"
	// Local chains take their addresses from the environment
	Local Class = "local"
)

// Well known chain ids
const (
	EthereumChainID = 1
	GoerliChainID   = 5
	PolygonChainID  = 137
	MumbaiChainID   = 80001
)

// Environment variables consulted for local chains
const (
	FxRootEnv            = "FX_ROOT"
	CheckpointManagerEnv = "CHECKPOINT_MANAGER"
	FxChildEnv           = "FX_CHILD"
	FxERC20Env           = "FX_ERC20"
	FxBridgeEnv          = "FX_BRIDGE"
)

// LookupEnv matches os.LookupEnv
type LookupEnv func(key string) (string, bool)

// RootAddresses are the FxPortal contracts of a root chain
type RootAddresses struct {
	Class             Class
	FxRoot            ethgo.Address
	CheckpointManager ethgo.Address
}

// ChildAddresses are the FxPortal contracts of a child chain
type ChildAddresses struct {
	Class    Class
	FxChild  ethgo.Address
	FxBridge ethgo.Address
	FxERC20  ethgo.Address
}

// ClassifyRoot maps a root chain id to its class
func ClassifyRoot(chainID *big.Int) Class {
	if !chainID.IsUint64() {
		return Local
	}

	switch chainID.Uint64() {
	case EthereumChainID:
		return Mainnet
	case GoerliChainID:
		return Testnet
	default:
		return Local
	}
}

// ClassifyChild maps a child chain id to its class
func ClassifyChild(chainID *big.Int) Class {
	if !chainID.IsUint64() {
		return Local
	}

	switch chainID.Uint64() {
	case PolygonChainID:
		return Mainnet
	case MumbaiChainID:
		return Testnet
	default:
		return Local
	}
}

// ChildChainID returns the child chain paired with a well known root chain, zero otherwise
func ChildChainID(rootChainID *big.Int) uint64 {
	switch ClassifyRoot(rootChainID) {
	case Mainnet:
		return PolygonChainID
	case Testnet:
		return MumbaiChainID
	default:
		return 0
	}
}

// RootChainID returns the root chain paired with a well known child chain, zero otherwise
func RootChainID(childChainID *big.Int) uint64 {
	switch ClassifyChild(childChainID) {
	case Mainnet:
		return EthereumChainID
	case Testnet:
		return GoerliChainID
	default:
		return 0
	}
}

// ResolveRoot resolves the root chain contracts, from the address book for
// known chains and from the environment otherwise
func ResolveRoot(book AddressBook, chainID *big.Int, env LookupEnv) (*RootAddresses, error) {
	class := ClassifyRoot(chainID)
	res := &RootAddresses{Class: class}

	var err error

	if class == Local {
		if res.FxRoot, err = fromEnv(env, FxRootEnv); err != nil {
			return nil, err
		}

		if res.CheckpointManager, err = fromEnv(env, CheckpointManagerEnv); err != nil {
			return nil, err
		}

		return res, nil
	}

	if res.FxRoot, err = book.Lookup(class, FxRoot); err != nil {
		return nil, err
	}

	if res.CheckpointManager, err = book.Lookup(class, CheckpointManager); err != nil {
		return nil, err
	}

	return res, nil
}

// ResolveChild resolves the child chain contracts, from the address book for
// known chains and from the environment otherwise
func ResolveChild(book AddressBook, chainID *big.Int, env LookupEnv) (*ChildAddresses, error) {
	class := ClassifyChild(chainID)
	res := &ChildAddresses{Class: class}

	var err error

	if class == Local {
		if res.FxChild, err = fromEnv(env, FxChildEnv); err != nil {
			return nil, err
		}

		if res.FxBridge, err = fromEnv(env, FxBridgeEnv); err != nil {
			return nil, err
		}

		if res.FxERC20, err = fromEnv(env, FxERC20Env); err != nil {
			return nil, err
		}

		return res, nil
	}

	if res.FxChild, err = book.Lookup(class, FxChild); err != nil {
		return nil, err
	}

	if res.FxBridge, err = book.Lookup(class, FxBridge); err != nil {
		return nil, err
	}

	if res.FxERC20, err = book.Lookup(class, FxERC20); err != nil {
		return nil, err
	}

	return res, nil
}

func fromEnv(env LookupEnv, key string) (ethgo.Address, error) {
	if env == nil {
		return ethgo.ZeroAddress, nil
	}

	value, ok := env(key)
	if !ok || strings.TrimSpace(value) == "" {
		return ethgo.ZeroAddress, nil
	}

	return parseAddress(key, value)
}

func parseAddress(name, raw string) (ethgo.Address, error) {
	buf, err := hex.DecodeHex(raw)
	if err != nil || len(buf) != len(ethgo.Address{}) {
		return ethgo.ZeroAddress, fmt.Errorf("invalid %s address '%s'", name, raw)
	}

	var addr ethgo.Address
	copy(addr[:], buf)

	return addr, nil
}
