package version

// Version of the comparison engine, overridden at build time with
// -ldflags "-X github.com/rxtech-lab/argo-compare/internal/version.Version=v1.2.3".
// "main" marks a development build.
var Version = "v1.0.0"

// GetVersion returns the engine version configs are checked against.
func GetVersion() string {
	return Version
}
