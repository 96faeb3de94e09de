package storage

import (
	"os"
)

// DiskUsageBytes returns the combined size of the SQLite database at dbPath and its
// write-ahead log and shared-memory files. Missing files contribute 0.
func DiskUsageBytes(dbPath string) (int64, error) {
	if dbPath == "" || dbPath == ":memory:" {
		return 0, nil
	}
	var total int64
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}
