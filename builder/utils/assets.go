package utils

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
)

// BuildAssetsEsbuild runs CSS and JS from srcDir through esbuild into
// <destRoot>/static on destFs. With minify, outputs get content-hash
// names and the returned map translates "/static/..." paths to their
// fingerprinted equivalents. CSS is bundled so @import and font URLs
// resolve; JS files build standalone.
func BuildAssetsEsbuild(srcFs afero.Fs, destFs afero.Fs, srcDir, destRoot string, minify bool, onWrite func(string)) (map[string]string, error) {
	fmt.Println("🎨 Building assets with esbuild...")
	assets := make(map[string]string)
	destDir := filepath.Join(destRoot, "static")

	var jsEntryPoints []string
	var cssEntryPoints []string

	err := afero.Walk(srcFs, srcDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".js":
			jsEntryPoints = append(jsEntryPoints, path)
		case ".css":
			cssEntryPoints = append(cssEntryPoints, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for assets: %w", err)
	}

	process := func(entryPoints []string, bundle bool) error {
		if len(entryPoints) == 0 {
			return nil
		}
		buildOptions := api.BuildOptions{
			EntryPoints:       entryPoints,
			Bundle:            bundle,
			Write:             false,
			Outdir:            destDir,
			Outbase:           srcDir,
			MinifyWhitespace:  minify,
			MinifyIdentifiers: minify,
			MinifySyntax:      minify,
			Sourcemap:         api.SourceMapExternal,
			Metafile:          true,
			Loader: map[string]api.Loader{
				".woff2": api.LoaderFile,
				".woff":  api.LoaderFile,
				".ttf":   api.LoaderFile,
				".png":   api.LoaderFile,
				".webp":  api.LoaderFile,
				".svg":   api.LoaderFile,
			},
		}

		if minify {
			buildOptions.EntryNames = "[dir]/[name].[hash]"
			buildOptions.AssetNames = "assets/[name].[hash]"
		}

		result := api.Build(buildOptions)
		if len(result.Errors) > 0 {
			return fmt.Errorf("esbuild failed: %s", result.Errors[0].Text)
		}

		for _, outFile := range result.OutputFiles {
			rel, ok := relFromRoot(destRoot, outFile.Path)
			if !ok {
				return fmt.Errorf("esbuild output %s escapes destination", outFile.Path)
			}
			vfsPath := filepath.Join(destRoot, rel)
			if err := WriteFileVFS(destFs, vfsPath, outFile.Contents); err != nil {
				return err
			}
			if onWrite != nil {
				onWrite(vfsPath)
			}
		}

		// The metafile maps entry points to their hashed outputs.
		type Metafile struct {
			Outputs map[string]struct {
				EntryPoint string `json:"entryPoint"`
			} `json:"outputs"`
		}

		var meta Metafile
		if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
			return fmt.Errorf("failed to parse metafile: %w", err)
		}

		for outPath, outInfo := range meta.Outputs {
			if outInfo.EntryPoint == "" {
				continue
			}

			entryRel, ok := relFromRoot(srcDir, outInfo.EntryPoint)
			if !ok {
				continue
			}
			outRel, ok := relFromRoot(destRoot, outPath)
			if !ok {
				continue
			}

			assets["/static/"+entryRel] = "/" + outRel
		}
		return nil
	}

	// CSS is bundled for @import and fonts
	if err := process(cssEntryPoints, true); err != nil {
		return nil, err
	}

	// JS builds standalone to avoid wrapping libraries
	if err := process(jsEntryPoints, false); err != nil {
		return nil, err
	}

	return assets, nil
}

// relFromRoot resolves p relative to root, tolerating mixed absolute
// and relative spellings of the same location.
func relFromRoot(root, p string) (string, bool) {
	if r, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r), true
	}
	absRoot, err1 := filepath.Abs(root)
	absP, err2 := filepath.Abs(p)
	if err1 == nil && err2 == nil {
		if r, err := filepath.Rel(absRoot, absP); err == nil && !strings.HasPrefix(r, "..") {
			return filepath.ToSlash(r), true
		}
	}
	return "", false
}
