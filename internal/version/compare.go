package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const devBuild = "main"

func isDevBuild(v string) bool {
	return strings.TrimPrefix(v, "v") == devBuild
}

func parse(role, v string) (*semver.Version, error) {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s version %q: %w", role, v, err)
	}

	return parsed, nil
}

// CheckVersionCompatibility reports whether a config written for configVersion runs on engineVersion.
// Major and minor must match, patch may differ. A "main" build on either side skips the check.
func CheckVersionCompatibility(engineVersion, configVersion string) error {
	if isDevBuild(engineVersion) || isDevBuild(configVersion) {
		return nil
	}

	engine, err := parse("engine", engineVersion)
	if err != nil {
		return err
	}

	config, err := parse("config", configVersion)
	if err != nil {
		return err
	}

	switch {
	case engine.Major() != config.Major():
		return fmt.Errorf("major version mismatch: engine is v%d, config was written for v%d",
			engine.Major(), config.Major())
	case engine.Minor() != config.Minor():
		return fmt.Errorf("minor version mismatch: engine is v%d.%d, config was written for v%d.%d",
			engine.Major(), engine.Minor(), config.Major(), config.Minor())
	}

	return nil
}
