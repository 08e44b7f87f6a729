package workspace

// Build types dub always provides, independent of the project recipe.
// Project-declared custom build types are unioned on top.
var builtinBuildTypes = []string{
	"plain",
	"debug",
	"release",
	"release-debug",
	"release-nobounds",
	"unittest",
	"docs",
	"ddox",
	"profile",
	"profile-gc",
	"cov",
	"unittest-cov",
}

// Arch types accepted by SetArchType. dub forwards these to the compiler.
var archTypes = []string{"x86_64", "x86", "aarch64"}

func contains(list []string, name string) bool {
	for _, entry := range list {
		if entry == name {
			return true
		}
	}
	return false
}
