package version

// version is overridden at build time with -ldflags "-X storefront/pkg/version.version=...".
var version = "dev"

// Version reports the build version of the storefront binary.
func Version() string {
	return version
}
