package storage

import "fmt"

// Backend is a state store that owns a resource.
type Backend interface {
	LoadState() ([]byte, error)
	SaveState(data []byte) error
	Close() error
}

// OpenBackend opens the store named by driver ("sqlite" or "file") at path.
func OpenBackend(driver, path string) (Backend, error) {
	switch driver {
	case "sqlite":
		db, err := Open(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "file":
		return NewFile(path), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
