package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima2d/engine/assets/loaders"
	"github.com/spaghettifunk/anima2d/engine/core"
	"github.com/spaghettifunk/anima2d/engine/renderer/metadata"
)

var ErrAssetNotFound = errors.New("asset not found")

/**
 * @brief Decodes one asset type. params carries per type options, for example
 * the pixel size of a system font.
 */
type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
	Unload(resource *metadata.Resource) error
}

type AssetInfo struct {
	Path     string
	Type     metadata.ResourceType
	Modified time.Time
}

/**
 * @brief Indexes the files of an assets directory by type, watches them for
 * changes and dispatches loads to the registered loaders.
 */
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	// paths modified since the last Changed call
	changed map[string]metadata.ResourceType

	mutex sync.RWMutex
	wg    sync.WaitGroup

	root     string
	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		changed:  make(map[string]metadata.ResourceType),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}

	// Register loaders
	am.RegisterLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.RegisterLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.RegisterLoader(metadata.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{})
	am.RegisterLoader(metadata.ResourceTypeSystemFont, &loaders.SystemFontLoader{})
	return am, nil
}

/**
 * @brief Indexes assetsDir and, when watch is set, starts watching it and all
 * its sub-directories.
 */
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	am.root = assetsDir
	if err := am.watchRecursive(assetsDir, false, watch); err != nil {
		return err
	}
	if watch {
		am.wg.Add(1)
		go am.start()
	}
	core.LogInfo("asset manager indexed %d files under `%s`", len(am.assets), assetsDir)
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	return am.fsnotify.Close()
}

// Register loaders for each asset type
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// Find resolves an asset by indexed path, or by file name without extension.
func (am *AssetManager) Find(name string, resourceType metadata.ResourceType) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	if a, ok := am.assets[filepath.Clean(name)]; ok && (resourceType == metadata.ResourceTypeNone || a.Type == resourceType) {
		return a, true
	}
	var found []AssetInfo
	for _, a := range am.assets {
		if a.Type != resourceType {
			continue
		}
		base := filepath.Base(a.Path)
		if base == name || strings.TrimSuffix(base, filepath.Ext(base)) == name {
			found = append(found, a)
		}
	}
	if len(found) == 0 {
		return AssetInfo{}, false
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found[0], true
}

// Assets returns the indexed assets of a type, sorted by path.
func (am *AssetManager) Assets(resourceType metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	var out []AssetInfo
	for _, a := range am.assets {
		if a.Type == resourceType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	asset, exists := am.Find(name, resourceType)
	if !exists {
		return nil, fmt.Errorf("%s `%s`: %w", resourceType, name, ErrAssetNotFound)
	}

	am.mutex.RLock()
	loader, loaderExists := am.loaders[asset.Type]
	am.mutex.RUnlock()
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Load(asset.Path, asset.Type, params)
}

func (am *AssetManager) UnloadAsset(resource *metadata.Resource) error {
	am.mutex.RLock()
	loader, ok := am.loaders[resource.Type]
	am.mutex.RUnlock()
	if !ok {
		return nil
	}
	return loader.Unload(resource)
}

/**
 * @brief Drains the paths created or modified since the previous call.
 *
 * @return The changed paths mapped to their asset type.
 */
func (am *AssetManager) Changed() map[string]metadata.ResourceType {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if len(am.changed) == 0 {
		return nil
	}
	out := am.changed
	am.changed = make(map[string]metadata.ResourceType)
	return out
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name, false, true); err != nil {
				core.LogWarn("asset watcher: %s", err)
			}
		}
		return
	}
	// Handle create or modify events
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if t := am.handleFileEvent(e.Name); t != metadata.ResourceTypeNone {
			am.mutex.Lock()
			am.changed[filepath.Clean(e.Name)] = t
			am.mutex.Unlock()
		}
	}
	//Can't stat a deleted directory, so just pretend that it's always a directory and
	//try to remove from the watch list...  we really have no clue if it's a directory or not...
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		am.removeAsset(e.Name)
		_ = am.fsnotify.Remove(e.Name)
	}
}

// watchRecursive indexes every file under path and adds (or removes) the directories to the watch list.
func (am *AssetManager) watchRecursive(path string, unWatch, watch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if !watch {
				return nil
			}
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) metadata.ResourceType {
	assetType := DetermineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return assetType
	}
	modified := time.Now()
	if fi, err := os.Stat(path); err == nil {
		modified = fi.ModTime()
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	path = filepath.Clean(path)
	am.assets[path] = AssetInfo{
		Path:     path,
		Type:     assetType,
		Modified: modified,
	}
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, filepath.Clean(path))
}

func DetermineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vert", ".frag":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".fnt":
		return metadata.ResourceTypeBitmapFont
	case ".ttf", ".otf":
		return metadata.ResourceTypeSystemFont
	case ".toml":
		return metadata.ResourceTypeConfig
	default:
		return metadata.ResourceTypeNone
	}
}
