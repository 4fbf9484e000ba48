//go:build race

package goplugin_test

func init() {
	buildFlags = append(buildFlags, "-race")
}
