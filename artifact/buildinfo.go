package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var errNoBuildInfo = errors.New("artifact has no build info")

// BuildInfo holds the compiler input of a hardhat build, used for source verification
type BuildInfo struct {
	ID              string          `json:"id"`
	SolcVersion     string          `json:"solcVersion"`
	SolcLongVersion string          `json:"solcLongVersion"`
	Input           json.RawMessage `json:"input"`
}

// CompilerVersion returns the version string in the "v0.8.9+commit.e5eed63a" form
func (b *BuildInfo) CompilerVersion() string {
	if b.SolcLongVersion == "" {
		return "v" + b.SolcVersion
	}

	return "v" + b.SolcLongVersion
}

// LoadBuildInfo reads the build info referenced by the artifact
func LoadBuildInfo(a *Artifact) (*BuildInfo, error) {
	if a.BuildInfoPath == "" {
		return nil, fmt.Errorf("%w: %s", errNoBuildInfo, a.Name)
	}

	raw, err := os.ReadFile(filepath.Clean(a.BuildInfoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read build info '%s': %w", a.BuildInfoPath, err)
	}

	var info BuildInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to decode build info '%s': %w", a.BuildInfoPath, err)
	}

	if len(info.Input) == 0 {
		return nil, fmt.Errorf("build info '%s' has no compiler input", a.BuildInfoPath)
	}

	return &info, nil
}
