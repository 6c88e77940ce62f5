package version

import "runtime/debug"

// Set at build time with something like:
// go build -ldflags "-X github.com/stepbot/pattern/version.Version=$(git describe --dirty)" ./cmd/pattern-draw

var Version string

// Hash is the short VCS revision the binary was built from, with a "-dirty"
// suffix for modified trees, or empty when the build has no VCS info.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return hashFromSettings(info.Settings)
}()

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "dev"
}()

func hashFromSettings(settings []debug.BuildSetting) string {
	var revision string
	modified := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision != "" && modified {
		return revision + "-dirty"
	}
	return revision
}
