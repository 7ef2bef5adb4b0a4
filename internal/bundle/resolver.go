package bundle

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/vburojevic/simlaunch/internal/domain"
	"howett.net/plist"
)

const (
	// DefaultName is the resource name the packaging step gives the app.
	DefaultName = "Packaged"
	// Extension is the file extension of iOS application bundles.
	Extension = ".app"
	// InfoPlistName is the manifest file at the root of an iOS .app bundle.
	InfoPlistName = "Info.plist"

	keyBundleIdentifier  = "CFBundleIdentifier"
	keyBundleDisplayName = "CFBundleDisplayName"
	keyBundleName        = "CFBundleName"
	keyShortVersion      = "CFBundleShortVersionString"
	keyBundleVersion     = "CFBundleVersion"
)

// Resolve locates <resourcesDir>/<name>.app, decodes its Info.plist and
// returns the validated app. Every step is a precondition for the next one;
// the first failure is returned as an *Error.
func Resolve(fs afero.Fs, resourcesDir, name string) (*domain.PackagedApp, error) {
	bundlePath, err := locate(fs, resourcesDir, name)
	if err != nil {
		return nil, err
	}

	info, err := readInfoPlist(fs, bundlePath)
	if err != nil {
		return nil, err
	}

	identifier, ok := stringValue(info, keyBundleIdentifier)
	if !ok || strings.TrimSpace(identifier) == "" {
		return nil, &Error{Kind: IdentifierNotFound, Path: filepath.Join(bundlePath, InfoPlistName)}
	}

	displayName, _ := stringValue(info, keyBundleDisplayName)
	if displayName == "" {
		displayName, _ = stringValue(info, keyBundleName)
	}
	version, _ := stringValue(info, keyShortVersion)
	if version == "" {
		version, _ = stringValue(info, keyBundleVersion)
	}

	return &domain.PackagedApp{
		Name:        name,
		Path:        bundlePath,
		Identifier:  identifier,
		DisplayName: displayName,
		Version:     version,
	}, nil
}

func locate(fs afero.Fs, resourcesDir, name string) (string, error) {
	if name == "" || strings.ContainsRune(name, filepath.Separator) {
		return "", &Error{Kind: BundleNotFound, Path: name}
	}

	path := filepath.Join(resourcesDir, name+Extension)
	ok, err := afero.DirExists(fs, path)
	if err != nil || !ok {
		return "", &Error{Kind: BundleNotFound, Path: path, Err: err}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

func readInfoPlist(fs afero.Fs, bundlePath string) (map[string]interface{}, error) {
	path := filepath.Join(bundlePath, InfoPlistName)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &Error{Kind: ManifestNotFound, Path: path, Err: err}
	}

	var info map[string]interface{}
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return nil, &Error{Kind: ManifestNotFound, Path: path, Err: err}
	}
	if info == nil {
		return nil, &Error{Kind: ManifestNotFound, Path: path, Err: errors.New("Info.plist is not a dictionary")}
	}

	return info, nil
}

func stringValue(info map[string]interface{}, key string) (string, bool) {
	v, ok := info[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
