package dirctx

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/academictechnexus/mascot-admin/pkg/sdk"
)

const (
	// SiteFileName is the name of the context file
	SiteFileName = ".mascot-site"
	// SiteFileVersion is the current schema version
	SiteFileVersion = "1"
)

// SiteContext remembers which site the commands in a directory operate on.
type SiteContext struct {
	Version   string    `json:"version"`
	SiteID    sdk.ID    `json:"site_id"`
	SiteName  string    `json:"site_name,omitempty"`
	Domain    string    `json:"domain,omitempty"`
	ServerURL string    `json:"server_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the SiteContext is valid
func (sc *SiteContext) Validate() error {
	if sc.Version != SiteFileVersion {
		return fmt.Errorf("unsupported %s file version: %s (expected %s)", SiteFileName, sc.Version, SiteFileVersion)
	}
	if sc.SiteID == "" {
		return fmt.Errorf("site_id is required")
	}
	return nil
}

// ReadSiteContext reads the context file from the current directory.
// Returns nil, nil if the file doesn't exist and an error if it is corrupted.
func ReadSiteContext() (*SiteContext, error) {
	data, err := os.ReadFile(SiteFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s file: %w", SiteFileName, err)
	}

	var sc SiteContext
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("corrupted %s file (invalid JSON): %w", SiteFileName, err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s file: %w", SiteFileName, err)
	}

	return &sc, nil
}

// WriteSiteContext writes the context file atomically via temp file + rename.
func WriteSiteContext(sc *SiteContext) error {
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("invalid context: %w", err)
	}

	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	data = append(data, '\n')

	tmpPath := SiteFileName + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, SiteFileName); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s to %s: %w", tmpPath, SiteFileName, err)
	}

	return nil
}

// ResolveSiteID picks the site a command targets:
// an explicit --site flag first, then the directory context.
func ResolveSiteID(explicit string, sc *SiteContext) (sdk.ID, error) {
	if explicit != "" {
		return sdk.ID(explicit), nil
	}
	if sc != nil && sc.SiteID != "" {
		return sc.SiteID, nil
	}
	return "", fmt.Errorf("site required: pass --site or run `mascotctl site use <id>` in this directory")
}
