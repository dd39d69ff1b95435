// Package snapshot persists completed reconciliation runs. Each run
// is written to its own timestamped YAML file with a temp-file-and-
// rename swap, so a consumer only ever sees fully written snapshots;
// an interrupted run leaves the prior snapshot in place untouched.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/netviva/fleetrec/pkg/constants"
	"github.com/netviva/fleetrec/pkg/errors"
	"github.com/netviva/fleetrec/pkg/logging"
	"github.com/netviva/fleetrec/pkg/recon"
)

const (
	snapshotPrefix = "run-"
	snapshotExt    = ".yaml"
	stampLayout    = "20060102T150405.000000000Z"
)

// Store persists and retrieves run snapshots under one directory.
type Store struct {
	dir       string
	retention int
}

// New opens a store rooted at dir, creating the directory when
// needed. Retention below two is raised to two so a previous snapshot
// always survives.
func New(dir string, retention int) (*Store, error) {
	if retention < 2 {
		retention = 2
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return &Store{dir: dir, retention: retention}, nil
}

// Save persists one completed run. The file is fully written and
// synced before it is renamed into place; older snapshots beyond the
// retention count are pruned afterwards.
func (s *Store) Save(result *recon.Result) error {
	if result == nil {
		return errors.NewValidationError("", "", "nil result")
	}

	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	name := snapshotPrefix + result.RunAt.UTC().Format(stampLayout) + snapshotExt
	final := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", s.dir, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO("write", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO("sync", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("close", tmpPath, err)
	}
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("move", final, err)
	}

	if err := s.prune(); err != nil {
		logging.Warn().Err(err).Msg("snapshot prune failed")
	}

	logging.Info().Str("snapshot", name).Msg("run snapshot saved")
	return nil
}

// Latest loads the most recent snapshot.
func (s *Store) Latest() (*recon.Result, error) {
	names, err := s.list()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.ErrNoSnapshot
	}
	return s.load(names[len(names)-1])
}

// Previous loads the snapshot immediately before the latest, for
// period-over-period comparison.
func (s *Store) Previous() (*recon.Result, error) {
	names, err := s.list()
	if err != nil {
		return nil, err
	}
	if len(names) < 2 {
		return nil, errors.ErrNoSnapshot
	}
	return s.load(names[len(names)-2])
}

// Count returns how many snapshots the store currently holds.
func (s *Store) Count() (int, error) {
	names, err := s.list()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// list returns snapshot file names sorted oldest first. The timestamp
// in the name sorts lexicographically, so name order is run order.
func (s *Store) list() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.WrapIO("read", s.dir, err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) load(name string) (*recon.Result, error) {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var result recon.Result
	if err := yaml.Unmarshal(data, &result); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &result, nil
}

// prune removes the oldest snapshots beyond the retention count.
func (s *Store) prune() error {
	names, err := s.list()
	if err != nil {
		return err
	}
	for len(names) > s.retention {
		path := filepath.Join(s.dir, names[0])
		if err := os.Remove(path); err != nil {
			return errors.WrapIO("remove", path, err)
		}
		names = names[1:]
	}
	return nil
}
