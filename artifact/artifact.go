package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/umbracle/ethgo/abi"

	"github.com/streamgold/sgld-deployer/helper/hex"
)

const (
	// FormatHardhat is the artifacts layout produced by `hardhat compile`
	FormatHardhat = "hardhat"
	// FormatSplit is the abi/<Name>.json + bin/<Name>.txt layout
	FormatSplit = "split"

	buildInfoDir = "build-info"
	dbgSuffix    = ".dbg.json"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrEmptyBytecode    = errors.New("artifact has no bytecode")
	ErrUnknownFormat    = errors.New("unknown artifacts format")
)

// Artifact is a compiled contract: ABI plus creation and runtime bytecode
type Artifact struct {
	Name             string
	SourceName       string
	Abi              *abi.ABI
	Bytecode         []byte
	DeployedBytecode []byte

	// BuildInfoPath points to the compiler input/output used to build the contract.
	// It is empty when the artifact format does not carry it.
	BuildInfoPath string
}

// FullyQualifiedName returns "<source>:<name>" as expected by block explorers
func (a *Artifact) FullyQualifiedName() string {
	if a.SourceName == "" {
		return a.Name
	}

	return fmt.Sprintf("%s:%s", a.SourceName, a.Name)
}

// Loader resolves contract artifacts by contract name
type Loader interface {
	Load(name string) (*Artifact, error)
}

// NewLoader returns the loader for the given artifacts layout
func NewLoader(format, root string) (Loader, error) {
	switch format {
	case FormatHardhat, "":
		return &HardhatLoader{Root: root}, nil
	case FormatSplit:
		return &SplitLoader{Root: root}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

type hardhatArtifact struct {
	ContractName     string   `json:"contractName"`
	SourceName       string   `json:"sourceName"`
	Abi              *abi.ABI `json:"abi"`
	Bytecode         string   `json:"bytecode"`
	DeployedBytecode string   `json:"deployedBytecode"`
}

type hardhatDebugFile struct {
	BuildInfo string `json:"buildInfo"`
}

// HardhatLoader reads artifacts from a hardhat artifacts directory
// (artifacts/contracts/<Source>.sol/<Name>.json)
type HardhatLoader struct {
	Root string
}

// Load finds the artifact file of the given contract and decodes it
func (h *HardhatLoader) Load(name string) (*Artifact, error) {
	path, err := h.find(name)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact '%s': %w", path, err)
	}

	art, err := DecodeHardhatArtifact(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact '%s': %w", path, err)
	}

	if art.Name == "" {
		art.Name = name
	}

	art.BuildInfoPath = readBuildInfoPath(path)

	return art, nil
}

func (h *HardhatLoader) find(name string) (string, error) {
	var found string

	target := name + ".json"

	err := filepath.WalkDir(h.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if d.Name() == buildInfoDir {
				return filepath.SkipDir
			}

			return nil
		}

		if d.Name() == target {
			found = path

			return filepath.SkipAll
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search artifacts in '%s': %w", h.Root, err)
	}

	if found == "" {
		return "", fmt.Errorf("%w: %s (root %s)", ErrArtifactNotFound, name, h.Root)
	}

	return found, nil
}

// readBuildInfoPath resolves the build info referenced by <Name>.dbg.json, if any
func readBuildInfoPath(artifactPath string) string {
	dbgPath := strings.TrimSuffix(artifactPath, ".json") + dbgSuffix

	raw, err := os.ReadFile(filepath.Clean(dbgPath))
	if err != nil {
		return ""
	}

	var dbg hardhatDebugFile
	if err := json.Unmarshal(raw, &dbg); err != nil || dbg.BuildInfo == "" {
		return ""
	}

	return filepath.Join(filepath.Dir(dbgPath), dbg.BuildInfo)
}

// DecodeHardhatArtifact unmarshals raw hardhat artifact JSON
func DecodeHardhatArtifact(data []byte) (*Artifact, error) {
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("artifact found but no correct format: %w", err)
	}

	bytecode, err := hex.DecodeHex(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}

	if len(bytecode) == 0 {
		return nil, ErrEmptyBytecode
	}

	deployed, err := hex.DecodeHex(raw.DeployedBytecode)
	if err != nil {
		return nil, fmt.Errorf("invalid deployed bytecode: %w", err)
	}

	if raw.Abi == nil {
		return nil, errors.New("artifact has no abi")
	}

	return &Artifact{
		Name:             raw.ContractName,
		SourceName:       raw.SourceName,
		Abi:              raw.Abi,
		Bytecode:         bytecode,
		DeployedBytecode: deployed,
	}, nil
}

// SplitLoader reads artifacts stored as <Root>/abi/<Name>.json and <Root>/bin/<Name>.txt.
// The bin file is optional.
type SplitLoader struct {
	Root string
}

// Load reads the ABI and the bytecode of the given contract
func (s *SplitLoader) Load(name string) (*Artifact, error) {
	abiPath := filepath.Join(s.Root, "abi", name+".json")
	binPath := filepath.Join(s.Root, "bin", name+".txt")

	rawAbi, err := os.ReadFile(filepath.Clean(abiPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, abiPath)
		}

		return nil, err
	}

	contractAbi, err := abi.NewABI(strings.TrimSpace(string(rawAbi)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi '%s': %w", abiPath, err)
	}

	art := &Artifact{
		Name: name,
		Abi:  contractAbi,
	}

	// abi only artifacts can be attached to but not deployed
	rawBin, err := os.ReadFile(filepath.Clean(binPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return art, nil
		}

		return nil, err
	}

	bytecode, err := hex.DecodeHex(string(rawBin))
	if err != nil {
		return nil, fmt.Errorf("failed to decode bytecode '%s': %w", binPath, err)
	}

	if len(bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyBytecode, binPath)
	}

	art.Bytecode = bytecode

	return art, nil
}
