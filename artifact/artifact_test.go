package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAbi = `[{"inputs":[{"internalType":"address","name":"_fxChild","type":"address"}],` +
	`"stateMutability":"nonpayable","type":"constructor"},` +
	`{"inputs":[],"name":"fxChild","outputs":[{"internalType":"address","name":"","type":"address"}],` +
	`"stateMutability":"view","type":"function"}]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func hardhatJSON(name, bytecode string) string {
	return `{"_format":"hh-sol-artifact-1","contractName":"` + name +
		`","sourceName":"contracts/` + name + `.sol","abi":` + testAbi +
		`,"bytecode":"` + bytecode + `","deployedBytecode":"0x6080"}`
}

func TestHardhatLoader_Load(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "contracts", "FxERC20ChildTunnel.sol")

	writeFile(t, filepath.Join(dir, "FxERC20ChildTunnel.json"), hardhatJSON("FxERC20ChildTunnel", "0x60806040"))
	writeFile(t, filepath.Join(dir, "FxERC20ChildTunnel.dbg.json"),
		`{"_format":"hh-sol-dbg-1","buildInfo":"../../build-info/abc.json"}`)
	// a file with the same name under build-info must be ignored
	writeFile(t, filepath.Join(root, "build-info", "FxERC20ChildTunnel.json"), `{}`)

	loader, err := NewLoader(FormatHardhat, root)
	require.NoError(t, err)

	art, err := loader.Load("FxERC20ChildTunnel")
	require.NoError(t, err)

	require.Equal(t, "FxERC20ChildTunnel", art.Name)
	require.Equal(t, "contracts/FxERC20ChildTunnel.sol:FxERC20ChildTunnel", art.FullyQualifiedName())
	require.Equal(t, []byte{0x60, 0x80, 0x60, 0x40}, art.Bytecode)
	require.Equal(t, []byte{0x60, 0x80}, art.DeployedBytecode)
	require.NotNil(t, art.Abi.Constructor)
	require.Contains(t, art.Abi.Methods, "fxChild")
	require.Equal(t, filepath.Join(root, "build-info", "abc.json"), art.BuildInfoPath)
}

func TestHardhatLoader_Errors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "contracts", "I.sol", "IFxMessageProcessor.json"),
		hardhatJSON("IFxMessageProcessor", "0x"))
	writeFile(t, filepath.Join(root, "contracts", "B.sol", "Broken.json"), `{"abi": 1`)

	loader := &HardhatLoader{Root: root}

	_, err := loader.Load("Missing")
	require.True(t, errors.Is(err, ErrArtifactNotFound))

	_, err = loader.Load("IFxMessageProcessor")
	require.True(t, errors.Is(err, ErrEmptyBytecode))

	_, err = loader.Load("Broken")
	require.ErrorContains(t, err, "no correct format")
}

func TestSplitLoader_Load(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "abi", "SimpleMintBurnERC721.json"), testAbi+"\n")
	writeFile(t, filepath.Join(root, "bin", "SimpleMintBurnERC721.txt"), "608060\n")

	loader, err := NewLoader(FormatSplit, root)
	require.NoError(t, err)

	art, err := loader.Load("SimpleMintBurnERC721")
	require.NoError(t, err)
	require.Equal(t, []byte{0x60, 0x80, 0x60}, art.Bytecode)
	require.Equal(t, "SimpleMintBurnERC721", art.FullyQualifiedName())

	_, err = loader.Load("ERC721Gateway_MintBurn")
	require.True(t, errors.Is(err, ErrArtifactNotFound))

	writeFile(t, filepath.Join(root, "abi", "anycall.json"), testAbi)

	abiOnly, err := loader.Load("anycall")
	require.NoError(t, err)
	require.Empty(t, abiOnly.Bytecode)

	writeFile(t, filepath.Join(root, "abi", "Empty.json"), testAbi)
	writeFile(t, filepath.Join(root, "bin", "Empty.txt"), "\n")

	_, err = loader.Load("Empty")
	require.True(t, errors.Is(err, ErrEmptyBytecode))
}

func TestNewLoader_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := NewLoader("truffle", t.TempDir())
	require.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestLoadBuildInfo(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "build-info", "abc.json")
	writeFile(t, path, `{"id":"abc","solcVersion":"0.8.9","solcLongVersion":"0.8.9+commit.e5eed63a",`+
		`"input":{"language":"Solidity","sources":{}}}`)

	_, err := LoadBuildInfo(&Artifact{Name: "X"})
	require.Error(t, err)

	info, err := LoadBuildInfo(&Artifact{Name: "X", BuildInfoPath: path})
	require.NoError(t, err)
	require.Equal(t, "v0.8.9+commit.e5eed63a", info.CompilerVersion())
	require.JSONEq(t, `{"language":"Solidity","sources":{}}`, string(info.Input))
}
