// Package manifest reads version identifiers from an APK's binary manifest.
package manifest

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shogo82148/androidbinary/apk"
)

// Version holds the authoritative identifiers embedded in AndroidManifest.xml.
// Either field may be empty when the manifest declares only one of them.
type Version struct {
	Name string
	Code string
}

// ReadVersion opens the APK at path and extracts versionName/versionCode.
// It returns an error when the file is missing, is not a parseable APK, or
// its manifest declares neither identifier; callers are expected to degrade
// gracefully rather than abort on that error.
func ReadVersion(path string) (*Version, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("artifact not found at %s: %w", path, err)
	}

	pkg, err := apk.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening apk %s: %w", path, err)
	}
	defer pkg.Close()

	m := pkg.Manifest()

	var v Version
	if name, err := m.VersionName.String(); err == nil {
		v.Name = name
	}
	if code, err := m.VersionCode.Int32(); err == nil {
		v.Code = strconv.FormatInt(int64(code), 10)
	}

	if v.Name == "" && v.Code == "" {
		return nil, fmt.Errorf("manifest in %s declares no versionName or versionCode", path)
	}
	return &v, nil
}
