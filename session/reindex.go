package session

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/depthtruth/logging"
	"go.viam.com/depthtruth/utils"
)

type indexedFile struct {
	index int
	name  string
}

// Reindex renames the frame files in every artifact directory of root so their indices run
// from zero without gaps, keeping their numeric order and extensions. Files sharing an index
// stay together. Names that are not frame indices are left alone. Two files that would get the
// same name, like "2.jpg" and "02.jpg", are a configuration error reported before anything is
// renamed. It returns the number of frames found per directory.
func Reindex(root string, logger logging.Logger) (map[Kind]int, error) {
	layout := Layout{Root: root}
	plans := map[Kind][]indexedFile{}
	for _, kind := range Kinds {
		dir := layout.Dir(kind)
		files, err := frameFiles(dir, logger)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		plans[kind] = files
	}

	counts := map[Kind]int{}
	for _, kind := range Kinds {
		files, ok := plans[kind]
		if !ok {
			continue
		}
		dir := layout.Dir(kind)
		indices := lo.Uniq(lo.Map(files, func(f indexedFile, _ int) int { return f.index }))
		sort.Ints(indices)
		// the n-th smallest index is never below n, so renaming in ascending order never
		// lands on a file that has not been moved yet
		targets := make(map[int]int, len(indices))
		for n, index := range indices {
			targets[index] = n
		}

		renamed := 0
		for _, f := range files {
			name := frameName(targets[f.index], f.name)
			if name == f.name {
				continue
			}
			from := filepath.Join(dir, f.name)
			to := filepath.Join(dir, name)
			if err := os.Rename(from, to); err != nil {
				return nil, utils.NewIOError("rename", from, err)
			}
			renamed++
		}
		counts[kind] = len(indices)
		logger.Infow("reindexed", "dir", dir, "frames", len(indices), "renamed", renamed)
	}
	return counts, nil
}

// frameFiles lists the frame files of dir in index order and rejects names that collide once
// their index is written canonically.
func frameFiles(dir string, logger logging.Logger) ([]indexedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, utils.NewIOError("list", dir, err)
	}
	var files []indexedFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		index, ok := frameIndex(e.Name())
		if !ok {
			logger.Warnw("skipping file that is not a frame", "dir", dir, "name", e.Name())
			continue
		}
		files = append(files, indexedFile{index, e.Name()})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].index != files[j].index {
			return files[i].index < files[j].index
		}
		return files[i].name < files[j].name
	})

	groups := lo.GroupBy(files, func(f indexedFile) string { return frameName(f.index, f.name) })
	for _, f := range files {
		if group := groups[frameName(f.index, f.name)]; len(group) > 1 {
			names := lo.Map(group, func(f indexedFile, _ int) string { return f.name })
			return nil, utils.NewConfigurationError("%v in %q are the same frame", names, dir)
		}
	}
	return files, nil
}

// frameName is the canonical name of frame index for a file named like name.
func frameName(index int, name string) string {
	return strconv.Itoa(index) + filepath.Ext(name)
}
