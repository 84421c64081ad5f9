package commands

import (
	"fmt"
	"io"

	"github.com/allisson/secretbroker/internal/platform"
)

// PlatformInfo describes where the broker keeps its files on this host.
type PlatformInfo struct {
	Platform          string `json:"platform"`
	ProcessGroups     bool   `json:"process_groups"`
	ConfigDir         string `json:"config_dir"`
	SecretsDir        string `json:"secrets_dir"`
	EnvFile           string `json:"env_file"`
	ApprovalCacheFile string `json:"approval_cache_file"`
}

// RunPlatform prints the detected platform and its file locations for goos.
func RunPlatform(goos string, writer io.Writer, format string) error {
	p, err := platform.DetectOS(goos)
	if err != nil {
		return err
	}

	info := PlatformInfo{Platform: string(p), ProcessGroups: p.SupportsProcessGroups()}
	if info.ConfigDir, err = p.ConfigDir(); err != nil {
		return err
	}
	if info.SecretsDir, err = p.SecretsDir(); err != nil {
		return err
	}
	if info.EnvFile, err = p.EnvFile(); err != nil {
		return err
	}
	if info.ApprovalCacheFile, err = p.ApprovalCacheFile(); err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(writer, info)
	}

	_, err = fmt.Fprintf(writer,
		"Platform:        %s\nProcess groups:  %t\nConfig dir:      %s\nSecrets dir:     %s\nEnv file:        %s\nApproval cache:  %s\n",
		info.Platform, info.ProcessGroups, info.ConfigDir, info.SecretsDir, info.EnvFile, info.ApprovalCacheFile,
	)
	return err
}
