package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// CheckVersionCompatibility checks if the engine can run a config written for
// configVersion. Returns nil if compatible, a coded error if not.
//
// Compatibility Rules:
//   - An empty config version means the config does not pin one and is accepted
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major and minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
//
// Examples:
//   - Engine 1.2.0, Config 1.2.0 -> OK
//   - Engine 1.2.1, Config 1.2.0 -> OK (patch differs)
//   - Engine 1.3.0, Config 1.2.0 -> ErrCodeVersionMismatch
//   - Engine main, Config 1.2.0 -> OK (dev build)
//   - Engine 1.2.0, Config "abc" -> ErrCodeInvalidVersion
func CheckVersionCompatibility(engineVersion, configVersion string) error {
	engineVersion = strings.TrimPrefix(strings.TrimSpace(engineVersion), "v")
	configVersion = strings.TrimPrefix(strings.TrimSpace(configVersion), "v")

	if configVersion == "" {
		return nil
	}

	if engineVersion == "main" || configVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if engineSemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: engine is %d.x.x but config requires %d.x.x",
			engineSemver.Major(), configSemver.Major())
	}

	if engineSemver.Minor() != configSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "minor version mismatch: engine is %d.%d.x but config requires %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			configSemver.Major(), configSemver.Minor())
	}

	return nil
}
