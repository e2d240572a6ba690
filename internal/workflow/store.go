package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/lugondev/solmint/internal/common"
	werrors "github.com/lugondev/solmint/internal/errors"
)

const lockRetryDelay = 50 * time.Millisecond

// DefaultLockTimeout bounds how long Save and Reset wait for another wizard
// holding the state lock.
const DefaultLockTimeout = 5 * time.Second

// Store persists State as a single JSON document.
type Store struct {
	common.LoggerMixin

	path        string
	lockTimeout time.Duration
}

// NewStore creates a store for the file at path.
func NewStore(path string) *Store {
	return &Store{
		LoggerMixin: common.NewLoggerMixin(),
		path:        path,
		lockTimeout: DefaultLockTimeout,
	}
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file yields a fresh start state; an
// unreadable or inconsistent file is STATE_CORRUPT.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.GetLogger().Debug("no state file, starting fresh", "path", s.path)
			return NewState(), nil
		}
		return nil, werrors.StateIO("read", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, werrors.StateCorrupt(fmt.Sprintf("cannot parse %s", s.path), err)
	}
	if err := state.Check(); err != nil {
		return nil, werrors.StateCorrupt(fmt.Sprintf("inconsistent %s", s.path), err)
	}

	s.GetLogger().Debug("loaded state", "path", s.path, "step", state.Step)
	return &state, nil
}

// Save writes state atomically under the state lock.
func (s *Store) Save(ctx context.Context, state *State) error {
	if err := state.Check(); err != nil {
		return werrors.InvalidInput("state", err)
	}

	data, err := encodeState(state)
	if err != nil {
		return werrors.StateIO("encode", err)
	}

	return s.withLock(ctx, func() error {
		dir := filepath.Dir(s.path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return werrors.StateIO("create directory for", err)
		}

		tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
		if err != nil {
			return werrors.StateIO("write", err)
		}
		tmpPath := tmp.Name()

		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return werrors.StateIO("write", err)
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return werrors.StateIO("sync", err)
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmpPath)
			return werrors.StateIO("write", err)
		}
		if err := os.Rename(tmpPath, s.path); err != nil {
			os.Remove(tmpPath)
			return werrors.StateIO("replace", err)
		}

		s.GetLogger().Info("saved state", "path", s.path, "step", state.Step)
		return nil
	})
}

// encodeState writes compact JSON with &, < and > left unescaped.
func encodeState(state *State) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(state); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Reset deletes the state file so the next run starts fresh.
func (s *Store) Reset(ctx context.Context) error {
	return s.withLock(ctx, func() error {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return werrors.StateIO("remove", err)
		}
		s.GetLogger().Info("reset state", "path", s.path)
		return nil
	})
}

func (s *Store) withLock(ctx context.Context, fn func() error) error {
	lock := flock.New(s.path + ".lock")
	defer lock.Close()

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return werrors.Canceled("state lock", err)
		}
		return werrors.StateIO("lock", err)
	}
	if !ok {
		return werrors.StateIO("lock", fmt.Errorf("%s is held by another process", lock.Path()))
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.GetLogger().Warn("failed to release state lock", "error", err)
		}
	}()

	return fn()
}
